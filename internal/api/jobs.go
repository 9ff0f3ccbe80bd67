package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"routeopt/internal/model"
	"routeopt/internal/opt"
)

// startJob registers an async run, executes fn on a goroutine and publishes
// progress plus a terminal event on the job's topic. The callback URL, when
// set, receives the terminal job state through the notifier. The returned
// value is a snapshot taken before the run starts.
func (s *Server) startJob(kind, callbackURL string, fn func(jobID string, onProgress func(opt.Progress)) (any, error)) model.Job {
	job := &model.Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    model.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	accepted := *job

	go func() {
		s.mu.Lock()
		job.Status = model.JobRunning
		s.mu.Unlock()

		onProgress := func(p opt.Progress) {
			s.Broker.Publish(job.ID, Event{Type: "optimize.progress", Data: map[string]any{
				"jobId":  job.ID,
				"phase":  p.Phase,
				"step":   p.Step,
				"total":  p.Total,
				"bestKm": p.BestKm,
			}})
		}
		result, err := fn(job.ID, onProgress)

		s.mu.Lock()
		now := time.Now().UTC()
		job.FinishedAt = &now
		if err != nil {
			job.Status = model.JobFailed
			job.Error = err.Error()
		} else {
			job.Status = model.JobCompleted
			job.Result = result
		}
		snap := *job
		s.mu.Unlock()

		evt := jobEvent(snap)
		s.Broker.Publish(snap.ID, evt)
		s.Notifier.Enqueue(callbackURL, evt.Type, snap)
	}()
	return accepted
}

// jobEvent is the terminal event for a finished job.
func jobEvent(job model.Job) Event {
	data := map[string]any{"jobId": job.ID, "kind": job.Kind, "status": job.Status}
	if job.Error != "" {
		data["error"] = job.Error
	}
	if job.Result != nil {
		data["result"] = job.Result
	}
	return Event{Type: "optimize." + job.Status, Data: data}
}

// jobSnapshot returns a copy of the job state.
func (s *Server) jobSnapshot(id string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, false
	}
	return *job, true
}

// JobByIDHandler handles GET /v1/jobs/{id}.
func (s *Server) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	job, ok := s.jobSnapshot(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Job not found", id, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
