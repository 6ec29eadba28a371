package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	chi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// State names reported by the status endpoint
const (
	StateUninitialized = "UNINITIALIZED"
	StateMonitoring    = "MONITORING"
)

// StatusReport is the JSON body of GET /status
type StatusReport struct {
	State       string    `json:"state"`
	Folder      string    `json:"folder"`
	Cycles      int       `json:"cycles"`
	Failures    int       `json:"failures"`
	LastCycleID string    `json:"last_cycle_id,omitempty"`
	LastCycleAt time.Time `json:"last_cycle_at,omitempty"`
	LastChanges int       `json:"last_changes"`
	LastNew     int       `json:"last_new_duplicates"`
	LastError   string    `json:"last_error,omitempty"`
}

// Status is the tracker's live state, safe for concurrent readers
type Status struct {
	mu     sync.RWMutex
	report StatusReport
}

func newStatus(folder string) *Status {
	return &Status{report: StatusReport{State: StateUninitialized, Folder: folder}}
}

// Snapshot returns a copy of the current report
func (s *Status) Snapshot() StatusReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Cycles returns the number of finished cycles, failed ones included
func (s *Status) Cycles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report.Cycles
}

func (s *Status) setMonitoring() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.State = StateMonitoring
}

func (s *Status) record(r *CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Cycles++
	s.report.LastCycleID = r.ID
	s.report.LastCycleAt = r.Started
	s.report.LastChanges = len(r.Changes)
	s.report.LastNew = len(r.NewPairs)
	s.report.LastError = ""
}

func (s *Status) recordFailure(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Cycles++
	s.report.Failures++
	s.report.LastCycleAt = at
	s.report.LastError = err.Error()
}

// StatusServer exposes a tracker's status over HTTP
type StatusServer struct {
	router chi.Router
	status *Status
	logger *zap.Logger
}

// NewStatusServer builds the /status and /healthz routes
func NewStatusServer(status *Status, logger *zap.Logger) *StatusServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &StatusServer{router: chi.NewRouter(), status: status, logger: logger}
	s.routes()
	return s
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *StatusServer) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("dur", time.Since(start)))
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/status", s.handleStatus)
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(s.status.Snapshot())
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *StatusServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
