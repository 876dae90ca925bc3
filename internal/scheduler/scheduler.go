// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/discord-status/internal/status"
	"github.com/tamzrod/discord-status/internal/writer"
)

// State is the scheduler lifecycle.
// Transitions: Unstarted -> Connecting -> Running -> Stopped,
// with Connecting -> Stopped on connect failure.
type State int

const (
	Unstarted State = iota
	Connecting
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Connecting:
		return "connecting"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Connector owns the remote connection.
type Connector interface {
	Connect(ctx context.Context) error
	Connected() bool
	Close() error
}

// Capturer produces snapshots from the host authority.
type Capturer interface {
	Capture(ctx context.Context) (status.Status, *status.Snapshot, error)
}

// Publisher delivers reports.
type Publisher interface {
	PublishSync(ctx context.Context, st status.Status, snap *status.Snapshot) writer.Outcome
}

// Config is the minimal runtime config the scheduler needs.
type Config struct {
	InitialDelay    time.Duration
	Interval        time.Duration
	ConnectTimeout  time.Duration
	SnapshotTimeout time.Duration
	PublishTimeout  time.Duration
}

// Scheduler drives the report lifecycle: connect, STARTING, periodic
// ONLINE/OFFLINE ticks, and a final OFFLINE on Stop.
type Scheduler struct {
	cfg    Config
	conn   Connector
	capt   Capturer
	pub    Publisher
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	done     chan struct{} // closed when the run goroutine exits
	stopOnce sync.Once
	stopped  chan struct{} // closed when Stop has finished
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler with immutable config.
func New(cfg Config, conn Connector, capturer Capturer, pub Publisher, opts ...Option) (*Scheduler, error) {
	if conn == nil || capturer == nil || pub == nil {
		return nil, errors.New("scheduler: connector, capturer and publisher required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("scheduler: interval must be > 0")
	}
	if cfg.InitialDelay < 0 {
		return nil, errors.New("scheduler: initial delay must be >= 0")
	}
	if cfg.ConnectTimeout <= 0 || cfg.SnapshotTimeout <= 0 || cfg.PublishTimeout <= 0 {
		return nil, errors.New("scheduler: timeouts must be > 0")
	}

	s := &Scheduler{
		cfg:     cfg,
		conn:    conn,
		capt:    capturer,
		pub:     pub,
		logger:  slog.Default(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins connecting on a background goroutine and returns.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Unstarted {
		return fmt.Errorf("scheduler: start in state %s", s.state)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = Connecting

	go s.run(ctx)
	return nil
}

// Stop cancels the loop, publishes OFFLINE if still connected, and
// releases the connection. ctx bounds the whole shutdown.
// Failures are logged, never returned. Safe to call more than once;
// later calls wait for the first to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		defer close(s.stopped)
		s.stop(ctx)
	})

	select {
	case <-s.stopped:
	case <-ctx.Done():
	}
}

func (s *Scheduler) stop(ctx context.Context) {
	s.mu.Lock()
	if s.state == Unstarted {
		s.state = Stopped
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.mu.Unlock()

	// No new ticks from here on.
	cancel()

	select {
	case <-s.done:
	case <-ctx.Done():
		s.logger.Warn("loop did not finish before shutdown deadline", "error", ctx.Err())
	}

	if s.conn.Connected() {
		o := s.pub.PublishSync(ctx, status.Offline, nil)
		if o.OK() {
			s.logger.Info("offline report published", "action", o.Action, "message_id", o.MessageID)
		} else {
			s.logger.Warn("offline report not published", "action", o.Action, "error", o.Err)
		}
	}

	if err := s.conn.Close(); err != nil {
		s.logger.Warn("close connection failed", "error", err)
	}

	s.setState(Stopped)
}

// ------------------------------------------------------------
// BACKGROUND LOOP
// ------------------------------------------------------------

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	cctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	err := s.conn.Connect(cctx)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("connect abandoned by shutdown")
		} else {
			s.logger.Error("connect failed; status reports disabled", "error", err)
		}
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("close connection failed", "error", err)
		}
		s.setState(Stopped)
		return
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.state = Running
	s.mu.Unlock()

	s.logger.Info("scheduler running",
		"initial_delay", s.cfg.InitialDelay, "interval", s.cfg.Interval)

	s.publish(ctx, status.Starting, nil)

	timer := time.NewTimer(s.cfg.InitialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick captures one snapshot and publishes it.
func (s *Scheduler) tick(ctx context.Context) {
	// Stop may have won the select race.
	if ctx.Err() != nil {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.SnapshotTimeout)
	st, snap, err := s.capt.Capture(sctx)
	cancel()
	if err != nil {
		s.logger.Warn("snapshot unavailable, skipping tick", "error", err)
		return
	}

	s.publish(ctx, st, snap)
}

// publish runs detached from loop cancellation so Stop never aborts a
// publish midway; Stop waits for it instead.
func (s *Scheduler) publish(ctx context.Context, st status.Status, snap *status.Snapshot) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
	defer cancel()

	o := s.pub.PublishSync(pctx, st, snap)
	if ctx.Err() != nil {
		return
	}
	if o.OK() {
		s.logger.Debug("report published", "status", st, "action", o.Action)
	}
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
