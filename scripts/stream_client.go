// Package main runs a demo WebSocket client for async optimization jobs.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Kick off an async genetic run
	body := []byte(`{"method":"genetic","async":true,"seed":42,"deliveryPoints":[
		{"latitude":52.5200,"longitude":13.4050,"label":"alexanderplatz"},
		{"latitude":52.5310,"longitude":13.3847,"label":"hauptbahnhof"},
		{"latitude":52.5163,"longitude":13.3777,"label":"brandenburger-tor"},
		{"latitude":52.5075,"longitude":13.4251,"label":"ostbahnhof"},
		{"latitude":52.5415,"longitude":13.3954,"label":"wedding"}]}`)
	resp, err := http.Post(base+"/v1/optimize/route", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var accepted struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		log.Fatal(err)
	}
	if accepted.JobID == "" {
		log.Fatal("no job id returned")
	}
	log.Printf("Job ID: %s (%s)", accepted.JobID, accepted.Status)

	// Connect WS and follow the job
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/optimize/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	pl, _ := json.Marshal(map[string]any{"jobId": accepted.JobID})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
			if m.Type == "complete" {
				return
			}
		}
	}()

	select {
	case <-time.After(10 * time.Second):
	case <-done:
	}
}
