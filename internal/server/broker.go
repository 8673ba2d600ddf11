package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/campusquiz/internal/quiz"
)

// Event types published for a session.
const (
	EventFeedbackCleared = "feedback_cleared"
	EventQuestion        = "question"
	EventAnswer          = "answer"
	EventFinished        = "finished"
	EventTick            = "tick"
	EventError           = "error"
)

// Event is the payload streamed to a session's subscribers. A question event
// with an empty Question means the round has no more questions.
type Event struct {
	Type     string        `json:"type"`
	Question string        `json:"question,omitempty"`
	Result   *quiz.Result  `json:"result,omitempty"`
	Summary  *quiz.Summary `json:"summary,omitempty"`
	Elapsed  string        `json:"elapsed,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// Broker is an in-process pub/sub for quiz events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the session.
func (b *Broker) Subscribe(sessionID string) chan []byte {
	ch := make(chan []byte, 32)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Subscribers returns how many channels are subscribed to the session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

// Publish sends an event to all subscribers of the session without blocking.
func (b *Broker) Publish(sessionID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// presenter forwards controller output for one session to the broker.
type presenter struct {
	sessionID string
	broker    *Broker
}

func (p presenter) FeedbackCleared() {
	p.broker.Publish(p.sessionID, Event{Type: EventFeedbackCleared})
}

func (p presenter) QuestionChanged(name string) {
	p.broker.Publish(p.sessionID, Event{Type: EventQuestion, Question: name})
}

func (p presenter) AnswerResult(r quiz.Result) {
	p.broker.Publish(p.sessionID, Event{Type: EventAnswer, Result: &r})
}

func (p presenter) GameFinished(s quiz.Summary) {
	p.broker.Publish(p.sessionID, Event{Type: EventFinished, Summary: &s})
}

func (p presenter) Tick(formatted string) {
	p.broker.Publish(p.sessionID, Event{Type: EventTick, Elapsed: formatted})
}
