package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/store"
)

const noticeTTL = 3 * time.Second

// tickMsg carries the epoch of the schedule that produced it. Ticks from an
// older epoch (before a pause, restart or speed change) are dropped.
type tickMsg struct {
	epoch int
}

// teaScheduler implements engine.Scheduler on top of tea.Tick. Commands it
// creates are collected in pending and returned from the next Update.
type teaScheduler struct {
	epoch    int
	active   bool
	interval time.Duration
	pending  []tea.Cmd
}

func (s *teaScheduler) Start(interval time.Duration) {
	s.epoch++
	s.active = true
	s.interval = interval
	s.pending = append(s.pending, s.next())
}

func (s *teaScheduler) Stop() {
	s.epoch++
	s.active = false
}

func (s *teaScheduler) next() tea.Cmd {
	epoch := s.epoch
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

type notice struct {
	text    string
	expires time.Time
}

// uiObserver keeps what the view needs beyond the live session.
type uiObserver struct {
	now     func() time.Time
	notices []notice
	result  *engine.Result
}

func (u *uiObserver) Frame(game.Snapshot) {}

func (u *uiObserver) Notice(text string) {
	u.notices = append(u.notices, notice{text: text, expires: u.now().Add(noticeTTL)})
}

func (u *uiObserver) GameOver(res engine.Result) {
	u.result = &res
}

func (u *uiObserver) active() []string {
	now := u.now()
	kept := u.notices[:0]
	texts := make([]string, 0, len(u.notices))
	for _, n := range u.notices {
		if now.Before(n.expires) {
			kept = append(kept, n)
			texts = append(texts, n.text)
		}
	}
	u.notices = kept
	return texts
}

type model struct {
	engine *engine.Engine
	sched  *teaScheduler
	ui     *uiObserver
	stats  *store.StatsStore

	lastStats store.Stats
	statsFor  string // game id the stats were last read after
	color     bool
}

// newModel builds the engine from opts. The model supplies the scheduler and
// observes first; extra observers follow in order.
func newModel(opts engine.Options, extra engine.Observers, stats *store.StatsStore, color bool) *model {
	m := &model{
		sched: &teaScheduler{},
		ui:    &uiObserver{now: time.Now},
		stats: stats,
		color: color,
	}
	opts.Scheduler = m.sched
	opts.Observer = append(engine.Observers{m.ui}, extra...)
	m.engine = engine.New(opts)
	m.refreshStats()
	return m
}

func (m *model) refreshStats() {
	if m.stats == nil {
		return
	}
	if st, err := m.stats.Stats(); err == nil {
		m.lastStats = st
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

var keyDirections = map[string]game.Direction{
	"up": game.Up, "w": game.Up, "k": game.Up,
	"down": game.Down, "s": game.Down, "j": game.Down,
	"left": game.Left, "a": game.Left, "h": game.Left,
	"right": game.Right, "d": game.Right, "l": game.Right,
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.sched.Stop()
			return m, tea.Quit
		case " ", "p":
			if m.engine.State() == engine.StateRunning {
				m.engine.Pause()
			} else {
				m.engine.Start()
			}
		case "r", "enter":
			m.ui.result = nil
			m.engine.Reset()
		default:
			if dir, ok := keyDirections[key]; ok {
				m.engine.Input(dir)
			}
		}
	case tickMsg:
		if msg.epoch == m.sched.epoch && m.sched.active {
			m.engine.Tick()
			// A speed-up inside Tick restarts the schedule itself.
			if msg.epoch == m.sched.epoch && m.sched.active {
				m.sched.pending = append(m.sched.pending, m.sched.next())
			}
		}
	}

	if res := m.ui.result; res != nil && res.GameID != m.statsFor {
		m.statsFor = res.GameID
		m.refreshStats()
	}
	return m, m.sched.drain()
}

func (m *model) View() string {
	return render(m)
}
