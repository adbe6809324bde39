package engine

import (
	"context"
	"time"

	"github.com/brensch/conpac/game"
)

type (
	cmdInput   struct{ dir game.Direction }
	cmdPress   struct{ dir game.Direction }
	cmdRelease struct{}
	cmdStart   struct{}
	cmdPause   struct{}
	cmdReset   struct{}
	cmdDo      struct {
		fn   func(e *Engine)
		done chan struct{}
	}
)

// Driver runs an Engine on a single goroutine. Commands, the tick timer and
// the held-input repeat timer are all served from one select loop, so the
// engine never sees two events at once.
//
// Driver is the engine's Scheduler; its Start and Stop are only ever called
// from inside the loop.
type Driver struct {
	Inbox chan any

	engine         *Engine
	repeatInterval time.Duration

	ticker *time.Ticker
	tickC  <-chan time.Time

	repeat    *time.Ticker
	repeatC   <-chan time.Time
	repeatDir game.Direction

	quit chan struct{}
}

// NewDriver builds the engine described by opts with the driver as its
// scheduler. opts.Scheduler is ignored.
func NewDriver(opts Options) *Driver {
	d := &Driver{
		Inbox:          make(chan any, 64),
		repeatInterval: opts.Config.RepeatInterval,
		quit:           make(chan struct{}),
	}
	if d.repeatInterval <= 0 {
		d.repeatInterval = 50 * time.Millisecond
	}
	opts.Scheduler = d
	d.engine = New(opts)
	return d
}

// Start implements Scheduler.
func (d *Driver) Start(interval time.Duration) {
	d.Stop()
	d.ticker = time.NewTicker(interval)
	d.tickC = d.ticker.C
}

// Stop implements Scheduler.
func (d *Driver) Stop() {
	if d.ticker != nil {
		d.ticker.Stop()
		d.ticker = nil
	}
	d.tickC = nil
}

// Run serves the loop until ctx is cancelled. Both timers are stopped on
// the way out.
func (d *Driver) Run(ctx context.Context) {
	defer close(d.quit)
	defer d.stopRepeat()
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-d.Inbox:
			d.handle(cmd)
		case <-d.tickC:
			d.engine.Tick()
		case <-d.repeatC:
			d.engine.Input(d.repeatDir)
		}
		if d.engine.State() == StateOver {
			d.stopRepeat()
		}
	}
}

func (d *Driver) handle(cmd any) {
	switch c := cmd.(type) {
	case cmdInput:
		d.engine.Input(c.dir)
	case cmdPress:
		d.stopRepeat()
		d.engine.Input(c.dir)
		if d.engine.State() == StateOver {
			return
		}
		d.repeatDir = c.dir
		d.repeat = time.NewTicker(d.repeatInterval)
		d.repeatC = d.repeat.C
	case cmdRelease:
		d.stopRepeat()
	case cmdStart:
		d.engine.Start()
	case cmdPause:
		d.stopRepeat()
		d.engine.Pause()
	case cmdReset:
		d.stopRepeat()
		d.engine.Reset()
	case cmdDo:
		c.fn(d.engine)
		close(c.done)
	}
}

func (d *Driver) stopRepeat() {
	if d.repeat != nil {
		d.repeat.Stop()
		d.repeat = nil
	}
	d.repeatC = nil
}

func (d *Driver) send(cmd any) bool {
	select {
	case <-d.quit:
		return false
	default:
	}
	select {
	case d.Inbox <- cmd:
		return true
	case <-d.quit:
		return false
	}
}

// Input queues a single directional signal (a keypress).
func (d *Driver) Input(dir game.Direction) bool { return d.send(cmdInput{dir: dir}) }

// Press moves once and keeps repeating dir until Release.
func (d *Driver) Press(dir game.Direction) bool { return d.send(cmdPress{dir: dir}) }

// Release ends any held input. Call it for every pointer-up, cancel and
// leave event.
func (d *Driver) Release() bool { return d.send(cmdRelease{}) }

func (d *Driver) StartGame() bool { return d.send(cmdStart{}) }
func (d *Driver) PauseGame() bool { return d.send(cmdPause{}) }
func (d *Driver) ResetGame() bool { return d.send(cmdReset{}) }

// Do runs fn on the loop goroutine and waits for it. It returns false if the
// loop has already stopped.
func (d *Driver) Do(fn func(e *Engine)) bool {
	c := cmdDo{fn: fn, done: make(chan struct{})}
	if !d.send(c) {
		return false
	}
	select {
	case <-c.done:
		return true
	case <-d.quit:
		return false
	}
}

// Repeating reports whether a held input is active. Only meaningful from
// inside Do.
func (d *Driver) Repeating() bool { return d.repeat != nil }
