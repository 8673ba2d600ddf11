package quiz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/playperu/campusquiz/internal/besttime"
	"github.com/playperu/campusquiz/internal/campusquiz"
	"github.com/playperu/campusquiz/internal/geo"
	"github.com/playperu/campusquiz/internal/kv"
	"github.com/playperu/campusquiz/internal/timer"
)

// recorder captures presenter calls as short strings.
type recorder struct {
	events []string
	ticks  []string
	result []Result
	sums   []Summary
}

func (r *recorder) FeedbackCleared()         { r.events = append(r.events, "cleared") }
func (r *recorder) QuestionChanged(n string) { r.events = append(r.events, "question:"+n) }
func (r *recorder) AnswerResult(res Result) {
	r.result = append(r.result, res)
	r.events = append(r.events, fmt.Sprintf("answer:%s:%v", res.LocationName, res.IsCorrect))
}
func (r *recorder) GameFinished(s Summary) {
	r.sums = append(r.sums, s)
	r.events = append(r.events, fmt.Sprintf("finished:%d/%d", s.Correct, s.Total))
}
func (r *recorder) Tick(f string) { r.ticks = append(r.ticks, f) }

var epoch = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

var testLocations = []campusquiz.Location{
	{Name: "A", Bounds: geo.BoundingBox{North: 10, South: 5, East: -100, West: -105}},
	{Name: "B", Bounds: geo.BoundingBox{North: 5, South: 10, East: -105, West: -100}},
	{Name: "C", Bounds: geo.BoundingBox{North: 1, South: 0, East: 1, West: 0}},
	{Name: "D", Bounds: geo.BoundingBox{North: 21, South: 20, East: 31, West: 30}},
	{Name: "E", Bounds: geo.BoundingBox{North: -20, South: -21, East: -30, West: -31}},
}

func inside(l campusquiz.Location) geo.Point { return l.Bounds.Center() }

// outside is far from every test box.
var outside = geo.Point{Lat: 89, Lng: 179}

type fixture struct {
	man  *timer.Manual
	rec  *recorder
	best *besttime.Record
	ctrl *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	man := timer.NewManual(epoch)
	rec := &recorder{}
	best := besttime.New(kv.NewMemory(), nil)
	ctrl := New(testLocations, rec, best, Options{
		ID:           "test",
		Clock:        man,
		TickInterval: 250 * time.Millisecond,
	})
	return &fixture{man: man, rec: rec, best: best, ctrl: ctrl}
}

func (f *fixture) play(t *testing.T, correct []bool, step time.Duration) Summary {
	t.Helper()
	f.ctrl.Reset()
	var last Outcome
	for i, ok := range correct {
		f.man.Advance(step)
		p := outside
		if ok {
			p = inside(testLocations[i])
		}
		out, accepted := f.ctrl.SubmitGuess(context.Background(), p)
		if !accepted {
			t.Fatalf("guess %d not accepted", i)
		}
		last = out
	}
	if last.Summary == nil {
		t.Fatal("last guess produced no summary")
	}
	return *last.Summary
}

func TestInitialState(t *testing.T) {
	f := newFixture(t)
	s := f.ctrl.Snapshot()
	if s.State != StateIdle || s.Index != 0 || s.Correct != 0 || s.ElapsedSeconds != 0 {
		t.Errorf("initial snapshot = %+v", s)
	}
	if _, ok := f.ctrl.SubmitGuess(context.Background(), inside(testLocations[0])); ok {
		t.Error("guess accepted while idle")
	}
	if len(f.rec.result) != 0 {
		t.Error("idle guess reached the presenter")
	}
}

func TestResetEmitsFirstQuestion(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()

	want := []string{"cleared", "question:A"}
	if fmt.Sprint(f.rec.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", f.rec.events, want)
	}
	s := f.ctrl.Snapshot()
	if s.State != StateRunning || s.Question != "A" || s.Total != 5 {
		t.Errorf("snapshot after reset = %+v", s)
	}
}

func TestAllCorrect(t *testing.T) {
	f := newFixture(t)
	sum := f.play(t, []bool{true, true, true, true, true}, 3*time.Second)

	if sum.Correct != 5 || sum.Total != 5 {
		t.Errorf("summary = %+v, want correct=5 total=5", sum)
	}
	if sum.ElapsedSeconds != 15 {
		t.Errorf("elapsed = %d, want 15", sum.ElapsedSeconds)
	}
	if !sum.IsNewBest {
		t.Error("first finish should be a new best")
	}

	want := []string{
		"cleared", "question:A",
		"answer:A:true", "question:B",
		"answer:B:true", "question:C",
		"answer:C:true", "question:D",
		"answer:D:true", "question:E",
		"answer:E:true", "question:", "finished:5/5",
	}
	if fmt.Sprint(f.rec.events) != fmt.Sprint(want) {
		t.Errorf("events =\n%v\nwant\n%v", f.rec.events, want)
	}
}

func TestScoreCountsContainedGuesses(t *testing.T) {
	patterns := [][]bool{
		{false, false, false, false, false},
		{true, false, true, false, true},
		{false, true, true, true, true},
		{true, true, true, true, false},
	}

	for _, p := range patterns {
		t.Run(fmt.Sprint(p), func(t *testing.T) {
			f := newFixture(t)
			sum := f.play(t, p, time.Second)

			want := 0
			for _, ok := range p {
				if ok {
					want++
				}
			}
			if sum.Correct != want {
				t.Errorf("correct = %d, want %d", sum.Correct, want)
			}
			for i, res := range f.rec.result {
				if res.IsCorrect != p[i] {
					t.Errorf("result %d IsCorrect = %v, want %v", i, res.IsCorrect, p[i])
				}
			}
		})
	}
}

func TestInvariantDuringRound(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()
	for i := range testLocations {
		f.ctrl.SubmitGuess(context.Background(), inside(testLocations[i]))
		s := f.ctrl.Snapshot()
		if !(0 <= s.Correct && s.Correct <= s.Index && s.Index <= s.Total) {
			t.Fatalf("invariant broken after guess %d: %+v", i, s)
		}
	}
}

func TestResultCarriesNormalizedBounds(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()
	f.ctrl.SubmitGuess(context.Background(), geo.Point{Lat: 1, Lng: 1})
	out, _ := f.ctrl.SubmitGuess(context.Background(), geo.Point{Lat: 7, Lng: -102})

	if !out.Result.IsCorrect {
		t.Error("guess inside swapped box not counted")
	}
	want := geo.BoundingBox{North: 10, South: 5, East: -100, West: -105}
	if out.Result.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", out.Result.Bounds, want)
	}
	if out.Result.ClickedPoint != (geo.Point{Lat: 7, Lng: -102}) {
		t.Errorf("clicked = %+v", out.Result.ClickedPoint)
	}
	if out.NextQuestion != "C" {
		t.Errorf("next question = %q, want C", out.NextQuestion)
	}
}

func TestGuessAfterFinishIgnored(t *testing.T) {
	f := newFixture(t)
	f.play(t, []bool{true, false, true, false, true}, time.Second)
	before := f.ctrl.Snapshot()
	events := len(f.rec.events)

	for range 3 {
		if _, ok := f.ctrl.SubmitGuess(context.Background(), inside(testLocations[0])); ok {
			t.Fatal("guess accepted after finish")
		}
	}

	after := f.ctrl.Snapshot()
	if after.State != StateFinished || after.Index != before.Index || after.Correct != before.Correct {
		t.Errorf("snapshot changed after finish: before %+v after %+v", before, after)
	}
	if len(f.rec.events) != events {
		t.Errorf("presenter saw %d new events after finish", len(f.rec.events)-events)
	}
}

func TestFinishedElapsedIsFrozen(t *testing.T) {
	f := newFixture(t)
	f.play(t, []bool{true, true, true, true, true}, 2*time.Second)
	f.man.Advance(time.Minute)

	s := f.ctrl.Snapshot()
	if s.ElapsedSeconds != 10 || s.Elapsed != "00:10" {
		t.Errorf("finished elapsed = %d (%s), want 10 (00:10)", s.ElapsedSeconds, s.Elapsed)
	}
	if s.Summary == nil || s.Summary.Correct != 5 {
		t.Errorf("snapshot summary = %+v", s.Summary)
	}
	if s.Question != "" {
		t.Errorf("question after finish = %q, want empty", s.Question)
	}
}

func TestBestTime(t *testing.T) {
	f := newFixture(t)
	all := []bool{true, true, true, true, true}

	rounds := []struct {
		step    time.Duration
		wantNew bool
		best    int
	}{
		{step: 10 * time.Second, wantNew: true, best: 50},
		{step: 12 * time.Second, wantNew: false, best: 50},
		{step: 10 * time.Second, wantNew: false, best: 50},
		{step: 9 * time.Second, wantNew: true, best: 45},
	}

	for i, r := range rounds {
		sum := f.play(t, all, r.step)
		if sum.IsNewBest != r.wantNew {
			t.Errorf("round %d: IsNewBest = %v, want %v", i, sum.IsNewBest, r.wantNew)
		}
		if best, ok := f.best.Get(context.Background()); !ok || best != r.best {
			t.Errorf("round %d: best = %d, %v; want %d", i, best, ok, r.best)
		}
	}
}

func TestTickWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()
	f.man.Advance(time.Second)

	if len(f.rec.ticks) != 4 {
		t.Fatalf("ticks = %d, want 4", len(f.rec.ticks))
	}
	if got := f.rec.ticks[len(f.rec.ticks)-1]; got != "00:01" {
		t.Errorf("last tick = %q, want 00:01", got)
	}

	before := f.ctrl.Snapshot()
	f.man.Advance(time.Second)
	after := f.ctrl.Snapshot()
	if before.Index != after.Index || before.Correct != after.Correct || before.State != after.State {
		t.Error("tick mutated quiz state")
	}
}

func TestTickStopsOnFinish(t *testing.T) {
	f := newFixture(t)
	f.play(t, []bool{true, true, true, true, true}, time.Second)
	n := len(f.rec.ticks)

	f.man.Advance(5 * time.Second)
	if len(f.rec.ticks) != n {
		t.Errorf("ticks after finish: %d new", len(f.rec.ticks)-n)
	}
	if a := f.man.Active(); a != 0 {
		t.Errorf("active tickers after finish = %d, want 0", a)
	}
}

func TestResetMidRound(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()
	f.man.Advance(30 * time.Second)
	f.ctrl.SubmitGuess(context.Background(), inside(testLocations[0]))
	f.ctrl.SubmitGuess(context.Background(), inside(testLocations[1]))

	f.ctrl.Reset()
	if a := f.man.Active(); a != 1 {
		t.Errorf("active tickers after second reset = %d, want 1", a)
	}
	s := f.ctrl.Snapshot()
	if s.Index != 0 || s.Correct != 0 || s.ElapsedSeconds != 0 || s.Question != "A" {
		t.Errorf("snapshot after mid-round reset = %+v", s)
	}
	if last := f.rec.events[len(f.rec.events)-2:]; fmt.Sprint(last) != "[cleared question:A]" {
		t.Errorf("reset events = %v", last)
	}
}

func TestResetAfterFinish(t *testing.T) {
	f := newFixture(t)
	f.play(t, []bool{true, true, true, true, true}, time.Second)
	sum := f.play(t, []bool{false, false, false, false, false}, time.Second)
	if sum.Correct != 0 {
		t.Errorf("second round correct = %d, want 0", sum.Correct)
	}
	if s := f.ctrl.Snapshot(); s.Summary == nil || s.Summary.Correct != 0 {
		t.Errorf("snapshot summary = %+v", s.Summary)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Reset()
	f.ctrl.Close()
	n := len(f.rec.ticks)
	f.man.Advance(time.Second)
	if len(f.rec.ticks) != n {
		t.Error("tick fired after Close")
	}
}

func TestNilCollaborators(t *testing.T) {
	c := New(campusquiz.Locations, nil, nil, Options{Clock: timer.NewManual(epoch)})
	c.Reset()
	var out Outcome
	for _, l := range campusquiz.Locations {
		out, _ = c.SubmitGuess(context.Background(), l.Bounds.Center())
	}
	if out.Summary == nil || out.Summary.Correct != len(campusquiz.Locations) {
		t.Fatalf("summary = %+v", out.Summary)
	}
	if out.Summary.IsNewBest {
		t.Error("IsNewBest without a best-time store")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle: "idle", StateRunning: "running", StateFinished: "finished", State(9): "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []State{StateIdle, StateRunning, StateFinished} {
		b, _ := s.MarshalText()
		var got State
		if err := got.UnmarshalText(b); err != nil || got != s {
			t.Errorf("round trip %v = %v, %v", s, got, err)
		}
	}
	var s State
	if err := s.UnmarshalText([]byte("paused")); err == nil {
		t.Error("UnmarshalText(paused) succeeded")
	}
}
