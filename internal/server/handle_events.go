package server

import (
	"fmt"
	"net/http"
	"time"
)

const defaultPingInterval = 30 * time.Second

// handleEvents streams a session's quiz events as server-sent events. Each
// keep-alive ping also marks the session as in use, so a watcher that only
// listens keeps it from expiring.
func handleEvents(broker *Broker, pingInterval time.Duration) http.HandlerFunc {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		// Subscribe before the headers go out so a client that has seen the
		// response cannot miss the next event.
		ch := broker.Subscribe(s.ID)
		defer broker.Unsubscribe(s.ID, ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: quiz\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				s.touch()
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
