package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"routeopt/internal/metrics"
)

type delivery struct {
	url       string
	eventType string
	payload   []byte
	attempts  int
	dueAt     time.Time
}

// Notifier posts job results to caller-supplied callback URLs. Deliveries are
// retried with exponential backoff until maxAttempts is reached.
type Notifier struct {
	secret      string
	maxAttempts int
	log         *zap.Logger
	http        *http.Client

	mu    sync.Mutex
	queue []*delivery
	stop  chan struct{}
}

func NewNotifier(secret string, maxAttempts int, log *zap.Logger) *Notifier {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &Notifier{
		secret:      secret,
		maxAttempts: maxAttempts,
		log:         log,
		http:        &http.Client{Timeout: 5 * time.Second},
		stop:        make(chan struct{}),
	}
}

// Enqueue schedules a callback. A blank URL is a no-op.
func (n *Notifier) Enqueue(url, eventType string, payload any) {
	if url == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Warn("callback payload marshal failed", zap.Error(err))
		return
	}
	n.mu.Lock()
	n.queue = append(n.queue, &delivery{url: url, eventType: eventType, payload: body, dueAt: time.Now()})
	n.mu.Unlock()
}

func (n *Notifier) Start() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-n.stop:
				return
			case <-ticker.C:
				n.processOnce()
			}
		}
	}()
}

func (n *Notifier) Stop() { close(n.stop) }

// processOnce delivers everything due and reschedules failures.
func (n *Notifier) processOnce() {
	now := time.Now()
	n.mu.Lock()
	var due []*delivery
	rest := n.queue[:0]
	for _, d := range n.queue {
		if d.dueAt.After(now) {
			rest = append(rest, d)
			continue
		}
		due = append(due, d)
	}
	n.queue = rest
	n.mu.Unlock()

	for _, d := range due {
		if n.deliver(d) {
			metrics.CallbackDeliveries.WithLabelValues("delivered").Inc()
			continue
		}
		d.attempts++
		if d.attempts >= n.maxAttempts {
			metrics.CallbackDeliveries.WithLabelValues("dropped").Inc()
			n.log.Warn("callback dropped", zap.String("url", d.url), zap.Int("attempts", d.attempts))
			continue
		}
		metrics.CallbackDeliveries.WithLabelValues("retried").Inc()
		d.dueAt = time.Now().Add(nextBackoff(d.attempts))
		n.mu.Lock()
		n.queue = append(n.queue, d)
		n.mu.Unlock()
	}
}

func (n *Notifier) deliver(d *delivery) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(d.payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", d.eventType)
	if n.secret != "" {
		req.Header.Set("X-Signature", SignHMAC(n.secret, d.payload))
	}
	resp, err := n.http.Do(req)
	if err != nil {
		return false
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
