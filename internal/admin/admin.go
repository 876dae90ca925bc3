// internal/admin/admin.go
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/tamzrod/discord-status/internal/host"
	"github.com/tamzrod/discord-status/internal/scheduler"
	"github.com/tamzrod/discord-status/internal/writer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sources the admin surface reads from. All reads are snapshots.
type (
	HealthSource interface {
		Health(ctx context.Context) (host.Health, error)
	}
	StateSource interface {
		State() scheduler.State
	}
	OutcomeSource interface {
		Last() writer.Outcome
	}
	IdentitySource interface {
		MessageID() string
	}
)

// createdAter is implemented by stores that track identity age.
type createdAter interface {
	CreatedAt() time.Time
}

// Server is a read-only HTTP view of the bot.
type Server struct {
	health   HealthSource
	sched    StateSource
	outcomes OutcomeSource
	identity IdentitySource
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the admin server. logger may be nil.
func New(health HealthSource, sched StateSource, outcomes OutcomeSource, identity IdentitySource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		health:   health,
		sched:    sched,
		outcomes: outcomes,
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	return r
}

// Serve listens on addr until ctx ends.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("admin listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ---- handlers ----

type healthzResponse struct {
	OK        bool   `json:"ok"`
	Scheduler string `json:"scheduler"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	st := s.sched.State()
	resp := healthzResponse{OK: st == scheduler.Running, Scheduler: st.String()}

	code := http.StatusOK
	if !resp.OK {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, resp)
}

type statusResponse struct {
	Scheduler string         `json:"scheduler"`
	Server    serverStatus   `json:"server"`
	Report    reportStatus   `json:"report"`
	Publish   *publishStatus `json:"last_publish,omitempty"`
}

type serverStatus struct {
	Observed  bool   `json:"observed"`
	Reachable bool   `json:"reachable"`
	Failures  int    `json:"failures"`
	LastError string `json:"last_error,omitempty"`
	LastPoll  string `json:"last_poll,omitempty"`
	UpSince   string `json:"up_since,omitempty"`
	StartedAt string `json:"started_at"`
}

type reportStatus struct {
	MessageID string `json:"message_id,omitempty"`
	Saved     string `json:"saved,omitempty"`
}

type publishStatus struct {
	Status    string `json:"status"`
	Action    string `json:"action"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	At        string `json:"at"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	h, err := s.health.Health(r.Context())
	if err != nil {
		s.logger.Warn("admin status: authority unavailable", "error", err)
		http.Error(w, "authority unavailable", http.StatusServiceUnavailable)
		return
	}

	now := s.now()
	resp := statusResponse{
		Scheduler: s.sched.State().String(),
		Server: serverStatus{
			Observed:  h.Observed,
			Reachable: h.Reachable,
			Failures:  h.Failures,
			LastError: h.LastErr,
			LastPoll:  ago(h.LastPoll, now),
			UpSince:   ago(h.UpSince, now),
			StartedAt: ago(h.StartedAt, now),
		},
		Report: reportStatus{MessageID: s.identity.MessageID()},
	}

	if ca, ok := s.identity.(createdAter); ok {
		resp.Report.Saved = ago(ca.CreatedAt(), now)
	}

	if o := s.outcomes.Last(); !o.At.IsZero() {
		ps := &publishStatus{
			Status:    o.Status.String(),
			Action:    o.Action.String(),
			MessageID: o.MessageID,
			At:        ago(o.At, now),
		}
		if o.Err != nil {
			ps.Error = o.Err.Error()
		}
		resp.Publish = ps
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("admin: encode response", "error", err)
	}
}

// ago renders t relative to now ("3 minutes ago"); zero stays empty.
func ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
