// Package quiz implements the round state machine: it sequences the fixed
// questions, scores guesses against each building's bounds and times the
// round.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/campusquiz/internal/campusquiz"
	"github.com/playperu/campusquiz/internal/geo"
	"github.com/playperu/campusquiz/internal/timer"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "running":
		*s = StateRunning
	case "finished":
		*s = StateFinished
	default:
		return fmt.Errorf("unknown quiz state %q", b)
	}
	return nil
}

// Result describes one answered question.
type Result struct {
	LocationName string          `json:"locationName"`
	IsCorrect    bool            `json:"isCorrect"`
	ClickedPoint geo.Point       `json:"clickedPoint"`
	Bounds       geo.BoundingBox `json:"bounds"`
}

// Summary is emitted once when the last question has been answered.
type Summary struct {
	Correct        int  `json:"correct"`
	Total          int  `json:"total"`
	ElapsedSeconds int  `json:"elapsedSeconds"`
	IsNewBest      bool `json:"isNewBest"`
}

// Outcome is what SubmitGuess returns to the caller that delivered the
// guess. Summary is set only on the guess that finishes the round.
type Outcome struct {
	Result       Result   `json:"result"`
	NextQuestion string   `json:"nextQuestion,omitempty"`
	Summary      *Summary `json:"summary,omitempty"`
}

// Snapshot is a read-only view of a controller.
type Snapshot struct {
	State          State  `json:"state"`
	Index          int    `json:"index"`
	Correct        int    `json:"correct"`
	Total          int    `json:"total"`
	Question       string `json:"question,omitempty"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Elapsed        string `json:"elapsed"`

	// Summary is the result of the last finished round.
	Summary *Summary `json:"summary,omitempty"`
}

// Presenter renders controller output. Methods are called with the
// controller's lock held, so implementations must not call back into it.
type Presenter interface {
	FeedbackCleared()
	// QuestionChanged announces the name to find; "" means no more questions.
	QuestionChanged(name string)
	AnswerResult(r Result)
	GameFinished(s Summary)
	Tick(formatted string)
}

// BestTimes is the best-time slot consulted when a round finishes.
type BestTimes interface {
	Get(ctx context.Context) (int, bool)
	Offer(ctx context.Context, seconds int) bool
}

type Options struct {
	ID           string
	Clock        timer.Clock
	TickInterval time.Duration
	Logger       *slog.Logger
}

// Controller owns the state of one quiz. Every event (reset, guess, tick)
// runs to completion under mu before the next is handled.
type Controller struct {
	mu sync.Mutex

	id        string
	locations []campusquiz.Location
	presenter Presenter
	best      BestTimes
	timer     *timer.Timer
	logger    *slog.Logger

	state   State
	index   int
	correct int
	tickGen uint64
	last    *Summary
}

// New builds an idle controller over locs. A nil presenter discards output
// and a nil best disables best-time tracking.
func New(locs []campusquiz.Location, presenter Presenter, best BestTimes, opts Options) *Controller {
	if presenter == nil {
		presenter = Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = timer.DefaultTickInterval
	}
	return &Controller{
		id:        opts.ID,
		locations: locs,
		presenter: presenter,
		best:      best,
		timer:     timer.New(opts.Clock, opts.TickInterval),
		logger:    opts.Logger.With("session", opts.ID),
	}
}

func (c *Controller) ID() string { return c.id }

// Total is the number of questions in a round.
func (c *Controller) Total() int { return len(c.locations) }

// Reset starts a new round from any state, discarding the previous round's
// feedback and tick.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.presenter.FeedbackCleared()
	c.index = 0
	c.correct = 0
	c.last = nil
	c.tickGen++
	c.timer.Start(c.tickFunc(c.tickGen))
	c.state = StateRunning

	c.logger.Info("round started", "total", len(c.locations))
	c.presenter.QuestionChanged(c.questionLocked())
}

// SubmitGuess scores p against the current question. Guesses outside a
// running round are ignored and reported with ok == false.
func (c *Controller) SubmitGuess(ctx context.Context, p geo.Point) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return Outcome{}, false
	}
	// Unreachable while finish handling below is correct.
	if c.index < 0 || c.index >= len(c.locations) {
		return Outcome{}, false
	}

	loc := c.locations[c.index]
	res := Result{
		LocationName: loc.Name,
		IsCorrect:    geo.Contains(loc.Bounds, p),
		ClickedPoint: p,
		Bounds:       geo.Normalize(loc.Bounds),
	}
	if res.IsCorrect {
		c.correct++
	}
	c.presenter.AnswerResult(res)
	c.index++

	out := Outcome{Result: res}
	if c.index < len(c.locations) {
		out.NextQuestion = c.questionLocked()
		c.presenter.QuestionChanged(out.NextQuestion)
		return out, true
	}

	sum := c.finishLocked(ctx)
	out.Summary = &sum
	return out, true
}

func (c *Controller) finishLocked(ctx context.Context) Summary {
	c.state = StateFinished
	c.timer.Stop()

	sum := Summary{
		Correct:        c.correct,
		Total:          len(c.locations),
		ElapsedSeconds: c.timer.Elapsed(),
	}
	if c.best != nil {
		sum.IsNewBest = c.best.Offer(ctx, sum.ElapsedSeconds)
	}

	c.logger.Info("round finished",
		"correct", sum.Correct,
		"total", sum.Total,
		"elapsed_s", sum.ElapsedSeconds,
		"new_best", sum.IsNewBest,
	)
	c.last = &sum
	c.presenter.QuestionChanged("")
	c.presenter.GameFinished(sum)
	return sum
}

// Snapshot returns the current state without changing it.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.timer.Elapsed()
	if c.last != nil {
		elapsed = c.last.ElapsedSeconds
	}
	s := Snapshot{
		State:          c.state,
		Index:          c.index,
		Correct:        c.correct,
		Total:          len(c.locations),
		ElapsedSeconds: elapsed,
		Elapsed:        timer.Format(elapsed),
		Summary:        c.last,
	}
	if c.state == StateRunning {
		s.Question = c.questionLocked()
	}
	return s
}

// Close cancels any pending tick. The controller stays usable; a later
// Reset starts a fresh round.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickGen++
	c.timer.Stop()
}

func (c *Controller) questionLocked() string {
	if c.index < len(c.locations) {
		return c.locations[c.index].Name
	}
	return ""
}

// tickFunc returns the display callback for one round. A tick that fires
// after its round was reset, finished or closed is dropped.
func (c *Controller) tickFunc(gen uint64) func() {
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != StateRunning || c.tickGen != gen {
			return
		}
		c.presenter.Tick(timer.Format(c.timer.Elapsed()))
	}
}

// Discard is a Presenter that drops everything.
type Discard struct{}

func (Discard) FeedbackCleared()       {}
func (Discard) QuestionChanged(string) {}
func (Discard) AnswerResult(Result)    {}
func (Discard) GameFinished(Summary)   {}
func (Discard) Tick(string)            {}
