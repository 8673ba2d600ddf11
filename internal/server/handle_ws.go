package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/campusquiz/internal/geo"
)

// ClientMessage is an input event sent by the browser over the websocket.
type ClientMessage struct {
	Type string   `json:"type"` // "guess" or "reset"
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// handleWS carries quiz input and feedback over one connection: client
// messages drive the controller and every presenter event is written back.
func handleWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(s.ID)
		defer broker.Unsubscribe(s.ID, ch)

		replies := make(chan []byte, 4)
		go func() {
			defer cancel()
			for {
				var msg ClientMessage
				if err := wsjson.Read(ctx, conn, &msg); err != nil {
					if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
						logger.Debug("websocket read ended", "session", s.ID, "error", err)
					}
					return
				}
				s.touch()
				if reply := applyClientMessage(ctx, s, msg); reply != nil {
					select {
					case replies <- reply:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		for {
			var data []byte
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data = <-ch:
			case data = <-replies:
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				logger.Debug("websocket write failed", "session", s.ID, "error", err)
				return
			}
		}
	}
}

// applyClientMessage feeds one message to the session's controller. Quiz
// output flows back through the broker; only rejected messages get a direct
// reply.
func applyClientMessage(ctx context.Context, s *Session, msg ClientMessage) []byte {
	switch msg.Type {
	case "reset":
		s.Quiz.Reset()
		return nil
	case "guess":
		if msg.Lat == nil || msg.Lng == nil {
			return errorEvent("lat and lng are required")
		}
		if _, ok := s.Quiz.SubmitGuess(ctx, geo.Point{Lat: *msg.Lat, Lng: *msg.Lng}); !ok {
			return errorEvent("round is not running")
		}
		return nil
	default:
		return errorEvent("unknown message type " + msg.Type)
	}
}

func errorEvent(msg string) []byte {
	data, _ := json.Marshal(Event{Type: EventError, Message: msg})
	return data
}
