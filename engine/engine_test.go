package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/rules"
)

type fakeScheduler struct {
	starts []time.Duration
	stops  int
}

func (f *fakeScheduler) Start(d time.Duration) { f.starts = append(f.starts, d) }
func (f *fakeScheduler) Stop()                 { f.stops++ }

type recorder struct {
	frames  []game.Snapshot
	notices []string
	results []Result
}

func (r *recorder) Frame(s game.Snapshot) { r.frames = append(r.frames, s) }
func (r *recorder) Notice(t string)       { r.notices = append(r.notices, t) }
func (r *recorder) GameOver(res Result)   { r.results = append(r.results, res) }

func (r *recorder) count(text string) int {
	n := 0
	for _, s := range r.notices {
		if s == text {
			n++
		}
	}
	return n
}

// stillRand never takes a random branch and always picks index 0.
type stillRand struct{}

func (stillRand) Intn(int) int     { return 0 }
func (stillRand) Float64() float64 { return 0.99 }

type clock struct{ t time.Time }

func (c *clock) now() time.Time            { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func bareConfig() game.Config {
	cfg := game.DefaultConfig
	cfg.Name = "test"
	cfg.GridSize = 10
	cfg.SeedCells = 0
	cfg.GhostCount = 0
	cfg.Collectibles = 0
	cfg.ReplenishBatch = 0
	cfg.Patterns = nil
	return cfg
}

type harness struct {
	e     *Engine
	sched *fakeScheduler
	obs   *recorder
	clock *clock
}

func newHarness(t *testing.T, cfg game.Config) *harness {
	t.Helper()
	h := &harness{
		sched: &fakeScheduler{},
		obs:   &recorder{},
		clock: &clock{t: time.Unix(1_700_000_000, 0)},
	}
	ids := 0
	h.e = New(Options{
		Config:    cfg,
		Rand:      stillRand{},
		Scheduler: h.sched,
		Observer:  h.obs,
		Now:       h.clock.now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("game-%d", ids)
		},
	})
	return h
}

// place puts the player at p on an empty board and sets cells alive.
func (h *harness) place(p game.Point, live ...game.Point) *game.Session {
	s := h.e.Session()
	s.Grid = game.NewGrid(s.Grid.Size)
	for _, c := range live {
		s.Grid.Set(c, true)
	}
	s.Player.Pos = p
	s.Ghosts = nil
	s.Collectibles = nil
	return s
}

func dumpRows(s *game.Session) string {
	return strings.Join(s.Grid.Rows(), "\n")
}

func TestInputStartsGame(t *testing.T) {
	h := newHarness(t, bareConfig())
	h.place(game.Point{X: 5, Y: 5})

	if h.e.State() != StateIdle {
		t.Fatalf("state = %s, want idle", h.e.State())
	}
	if !h.e.Input(game.Right) {
		t.Fatalf("first input rejected")
	}
	if h.e.State() != StateRunning {
		t.Fatalf("state = %s, want running", h.e.State())
	}
	if len(h.sched.starts) != 1 || h.sched.starts[0] != bareConfig().TickInterval {
		t.Fatalf("scheduler starts = %v", h.sched.starts)
	}
	if got := h.e.Session().Player.Pos; got != (game.Point{X: 6, Y: 5}) {
		t.Fatalf("player = %v, want (6,5)", got)
	}
}

func TestMoveGateCoalesces(t *testing.T) {
	h := newHarness(t, bareConfig())
	h.place(game.Point{X: 0, Y: 5})

	if !h.e.Input(game.Right) {
		t.Fatalf("first input rejected")
	}
	h.clock.advance(100 * time.Millisecond)
	if h.e.Input(game.Right) {
		t.Fatalf("input inside cooldown accepted")
	}
	h.clock.advance(50 * time.Millisecond)
	if !h.e.Input(game.Right) {
		t.Fatalf("input after cooldown rejected")
	}
	if got := h.e.Session().Player.Pos.X; got != 2 {
		t.Fatalf("player x = %d, want 2", got)
	}
}

func TestWallsGrowOntoPlayer(t *testing.T) {
	h := newHarness(t, bareConfig())
	// Horizontal blinker above the player flips vertical onto it.
	h.place(game.Point{X: 5, Y: 5},
		game.Point{X: 4, Y: 4}, game.Point{X: 5, Y: 4}, game.Point{X: 6, Y: 4})
	h.e.Start()

	h.e.Tick()
	if h.e.State() != StateOver {
		t.Fatalf("state = %s\n%s", h.e.State(), dumpRows(h.e.Session()))
	}
	if len(h.obs.results) != 1 {
		t.Fatalf("results = %d, want 1", len(h.obs.results))
	}
	res := h.obs.results[0]
	if res.Reason != ReasonEnvironment || res.Message != MsgWallsGrew {
		t.Fatalf("result = %+v", res)
	}
	if h.sched.stops != 1 {
		t.Fatalf("scheduler stops = %d, want 1", h.sched.stops)
	}

	h.e.Tick()
	h.e.Tick()
	if len(h.obs.results) != 1 || h.sched.stops != 1 {
		t.Fatalf("game over fired again: results=%d stops=%d", len(h.obs.results), h.sched.stops)
	}
	if h.e.Input(game.Up) {
		t.Fatalf("input accepted after game over")
	}
}

func TestGhostCatchSkipsLifeStep(t *testing.T) {
	h := newHarness(t, bareConfig())
	s := h.place(game.Point{X: 5, Y: 5}, game.Point{X: 0, Y: 0}, game.Point{X: 1, Y: 0},
		game.Point{X: 0, Y: 1}, game.Point{X: 1, Y: 1})
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 5, Y: 4}}, {Pos: game.Point{X: 9, Y: 9}}}
	h.e.Start()

	h.e.Tick()
	res, ok := h.e.Result()
	if !ok || res.Reason != ReasonCaught || res.Message != MsgCaught {
		t.Fatalf("result = %+v ok=%v", res, ok)
	}
	if s.Generation != 0 {
		t.Fatalf("generation advanced to %d", s.Generation)
	}
	if s.Ghosts[1].Pos != (game.Point{X: 9, Y: 9}) {
		t.Fatalf("second ghost moved after the catch: %v", s.Ghosts[1].Pos)
	}
}

func TestExtinction(t *testing.T) {
	h := newHarness(t, bareConfig())
	h.place(game.Point{X: 5, Y: 5}, game.Point{X: 0, Y: 0})
	h.e.Start()

	h.e.Tick()
	res, ok := h.e.Result()
	if !ok || res.Reason != ReasonExtinction || res.Message != MsgExtinction {
		t.Fatalf("result = %+v ok=%v", res, ok)
	}
	if res.Generation != 1 || res.Total != 1 {
		t.Fatalf("generation=%d total=%d", res.Generation, res.Total)
	}
	last := h.obs.frames[len(h.obs.frames)-1]
	if last.State != "over" {
		t.Fatalf("last frame state = %q", last.State)
	}
}

func TestPauseAndResume(t *testing.T) {
	h := newHarness(t, bareConfig())
	s := h.place(game.Point{X: 5, Y: 5}, game.Point{X: 0, Y: 0}, game.Point{X: 1, Y: 0},
		game.Point{X: 0, Y: 1}, game.Point{X: 1, Y: 1})
	h.e.Start()
	h.e.Tick()

	if !h.e.Pause() || h.e.State() != StatePaused {
		t.Fatalf("pause failed, state = %s", h.e.State())
	}
	if h.sched.stops != 1 {
		t.Fatalf("pause did not stop the scheduler")
	}
	h.e.Tick()
	if s.Generation != 1 {
		t.Fatalf("tick while paused advanced to %d", s.Generation)
	}

	if !h.e.Input(game.Left) {
		t.Fatalf("input while paused rejected")
	}
	if h.e.State() != StateRunning || len(h.sched.starts) != 2 {
		t.Fatalf("state=%s starts=%v", h.e.State(), h.sched.starts)
	}
	if s.Player.Pos != (game.Point{X: 4, Y: 5}) {
		t.Fatalf("player = %v", s.Player.Pos)
	}
}

func TestSpeedUpOnce(t *testing.T) {
	cfg := bareConfig()
	cfg.SpeedUpScore = 2
	cfg.FastTickInterval = 100 * time.Millisecond
	h := newHarness(t, cfg)
	h.place(game.Point{X: 5, Y: 5}, game.Point{X: 0, Y: 0}, game.Point{X: 1, Y: 0},
		game.Point{X: 0, Y: 1}, game.Point{X: 1, Y: 1})
	h.e.Start()

	for i := 0; i < 2; i++ {
		h.e.Tick()
	}
	if h.e.Interval() != cfg.TickInterval {
		t.Fatalf("sped up at total %d", h.e.Session().Total())
	}
	for i := 0; i < 5; i++ {
		h.e.Tick()
	}
	if h.e.Interval() != cfg.FastTickInterval {
		t.Fatalf("interval = %v", h.e.Interval())
	}
	if n := h.obs.count(MsgSpeedUp); n != 1 {
		t.Fatalf("speed-up notices = %d, want 1", n)
	}
	want := []time.Duration{cfg.TickInterval, cfg.FastTickInterval}
	if fmt.Sprint(h.sched.starts) != fmt.Sprint(want) {
		t.Fatalf("scheduler starts = %v, want %v", h.sched.starts, want)
	}
}

func TestPatternCadence(t *testing.T) {
	cfg := bareConfig()
	cfg.Patterns = []game.PatternCadence{{Pattern: "glider", Every: 2}}
	h := newHarness(t, cfg)
	s := h.place(game.Point{X: 5, Y: 1}, game.Point{X: 4, Y: 4}, game.Point{X: 5, Y: 4},
		game.Point{X: 4, Y: 5}, game.Point{X: 5, Y: 5})
	h.e.Start()

	h.e.Tick()
	if len(h.obs.notices) != 0 || s.Grid.LiveCount() != 4 {
		t.Fatalf("pattern placed off cadence\n%s", dumpRows(s))
	}
	h.e.Tick()
	if h.obs.count(rules.Glider.Notice) != 1 {
		t.Fatalf("notices = %v", h.obs.notices)
	}
	if got := s.Grid.LiveCount(); got != 4+len(rules.Glider.Cells) {
		t.Fatalf("live = %d\n%s", got, dumpRows(s))
	}
}

func TestResetAfterGameOver(t *testing.T) {
	h := newHarness(t, bareConfig())
	h.place(game.Point{X: 5, Y: 5}, game.Point{X: 0, Y: 0})
	h.e.Start()
	h.e.Tick()
	if h.e.State() != StateOver {
		t.Fatalf("state = %s", h.e.State())
	}
	first := h.e.Session().ID

	h.e.Reset()
	if h.e.State() != StateIdle {
		t.Fatalf("state after reset = %s", h.e.State())
	}
	if _, ok := h.e.Result(); ok {
		t.Fatalf("result survived reset")
	}
	if h.e.Session().ID == first {
		t.Fatalf("reset kept game id %s", first)
	}
	if h.e.Interval() != bareConfig().TickInterval {
		t.Fatalf("interval = %v", h.e.Interval())
	}
	if h.e.Session().Score != 0 || h.e.Session().Generation != 0 {
		t.Fatalf("reset kept progress")
	}
}

func TestMoveIntoLiveCellEndsGame(t *testing.T) {
	h := newHarness(t, bareConfig())
	h.place(game.Point{X: 5, Y: 5}, game.Point{X: 5, Y: 4})

	h.e.Input(game.Up)
	res, ok := h.e.Result()
	if !ok || res.Reason != ReasonEnvironment || res.Message != MsgWalkedIntoWall {
		t.Fatalf("result = %+v ok=%v", res, ok)
	}
}
