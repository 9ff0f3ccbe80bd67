package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Job event streaming over WebSocket. The message protocol follows the
// graphql-transport-ws shape: connection_init/ack, subscribe, next, complete.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	JobID string `json:"jobId"`
}

// StreamHandler handles /v1/optimize/stream. Each subscribe names a job id;
// the stream carries its progress and terminal events as "next" messages.
func (s *Server) StreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Track subscriptions: message id -> job id and channel
	type sub struct {
		jobID string
		ch    chan Event
	}
	subs := map[string]sub{}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	// Writes come from the read loop, the keepalive goroutine and the fanout
	// goroutines, so they share one mutex.
	var wmu sync.Mutex
	write := func(v any) error {
		wmu.Lock()
		defer wmu.Unlock()
		return conn.WriteJSON(v)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			// Keepalive until the connection dies
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := write(wsMessage{Type: "ping"}); err != nil {
						return
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			var pl subscribePayload
			_ = json.Unmarshal(msg.Payload, &pl)
			if pl.JobID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"jobId required"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			// Subscribe before inspecting the job so a finish between the
			// two is not missed.
			ch := s.Broker.Subscribe(pl.JobID)
			job, ok := s.jobSnapshot(pl.JobID)
			if !ok {
				s.Broker.Unsubscribe(pl.JobID, ch)
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"job not found"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			if job.Status == "completed" || job.Status == "failed" {
				// Already finished: replay the terminal event and close out.
				s.Broker.Unsubscribe(pl.JobID, ch)
				payload, _ := json.Marshal(jobEvent(job))
				_ = write(wsMessage{Type: "next", ID: msg.ID, Payload: payload})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			if old, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(old.jobID, old.ch)
				delete(subs, msg.ID)
			}
			subs[msg.ID] = sub{jobID: pl.JobID, ch: ch}
			go func(id string, ch chan Event) {
				for evt := range ch {
					payload, _ := json.Marshal(evt)
					if write(wsMessage{Type: "next", ID: id, Payload: payload}) != nil {
						return
					}
					if evt.Type == "optimize.completed" || evt.Type == "optimize.failed" {
						break
					}
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)
		case "complete":
			if s0, ok := subs[msg.ID]; ok {
				s.Broker.Unsubscribe(s0.jobID, s0.ch)
				delete(subs, msg.ID)
			}
		default:
			// ignore
		}
	}
	for id, s0 := range subs {
		s.Broker.Unsubscribe(s0.jobID, s0.ch)
		delete(subs, id)
	}
}
