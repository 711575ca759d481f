package ropesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/Ko-stant/rope-follow/internal/geometry"
	"github.com/Ko-stant/rope-follow/internal/moves"
	"github.com/Ko-stant/rope-follow/internal/protocol"
	"github.com/Ko-stant/rope-follow/internal/simulation"
	"github.com/Ko-stant/rope-follow/internal/web"
	"github.com/Ko-stant/rope-follow/internal/ws"
)

const (
	streamPath = "/stream"
	// maxRequestLength bounds rope lengths clients may ask for.
	maxRequestLength = 1024
	recentRuns       = 20
)

var errSubscriberGone = errors.New("subscriber gone")

// Server replays scripts submitted over websocket. Every request is an
// independent run; finished runs are broadcast to all subscribers.
type Server struct {
	cfg    Config
	logger *log.Logger
	hub    *ws.Hub

	sequence atomic.Uint64
	runIDs   atomic.Uint64

	mu     sync.Mutex
	recent []web.RunRow
}

func NewServer(cfg Config, logger *log.Logger) *Server {
	return &Server{cfg: cfg, logger: logger, hub: ws.NewHub()}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(streamPath, s.handleStream)
	mux.HandleFunc("/", s.handleIndex)
	if s.cfg.Profiling {
		mountProfiling(mux)
	}
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	runs := make([]web.RunRow, len(s.recent))
	copy(runs, s.recent)
	s.mu.Unlock()

	page := web.IndexPage(web.IndexData{
		StreamPath:    streamPath,
		DefaultLength: s.cfg.LongLength,
		Subscribers:   s.hub.Len(),
		Runs:          runs,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		s.logger.Printf("render index: %v", err)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	s.hub.Add(conn)
	defer s.hub.Remove(conn)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		runID := s.runIDs.Add(1)
		req, err := protocol.DecodeRequestRun(data)
		if err != nil {
			s.logger.Printf("run %d: %v", runID, err)
			if err := s.send(ctx, conn, runID, protocol.PatchRunFailed, protocol.RunFailed{Message: err.Error()}); err != nil {
				s.logger.Printf("run %d: %v", runID, err)
				return
			}
			continue
		}
		s.serveRun(ctx, conn, runID, req)
	}
}

func (s *Server) serveRun(ctx context.Context, conn *websocket.Conn, runID uint64, req protocol.RequestRun) {
	length := req.RopeLength
	if length == 0 {
		length = s.cfg.LongLength
	}
	if length < 1 || length > maxRequestLength {
		err := s.send(ctx, conn, runID, protocol.PatchRunFailed, protocol.RunFailed{
			Message: fmt.Sprintf("rope length must be between 1 and %d, got %d", maxRequestLength, length),
		})
		if err != nil {
			s.logger.Printf("run %d: %v", runID, err)
		}
		return
	}

	var obs simulation.Observer
	if req.Steps {
		obs = simulation.ObserverFunc(func(st simulation.Step) error {
			err := s.send(ctx, conn, runID, protocol.PatchRopeStepped, protocol.RopeStepped{
				Step:      st.Number,
				Line:      st.Line,
				Direction: st.Direction.String(),
				Segments:  toPoints(st.Segments),
				Visited:   st.Visited,
				NewVisit:  st.NewVisit,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", errSubscriberGone, err)
			}
			return nil
		})
	}

	res, err := simulation.Run(ctx, req.Script, length, obs)
	if err != nil {
		s.logger.Printf("run %d: %v", runID, err)
		if errors.Is(err, errSubscriberGone) || ctx.Err() != nil {
			return
		}
		failed := protocol.RunFailed{Message: err.Error()}
		var pe *moves.ParseError
		if errors.As(err, &pe) {
			failed.Line = pe.Line
			failed.Code = string(pe.Code)
		}
		if err := s.send(ctx, conn, runID, protocol.PatchRunFailed, failed); err != nil {
			s.logger.Printf("run %d: %v", runID, err)
		}
		return
	}

	s.remember(web.RunRow{RunID: runID, RopeLength: res.RopeLength, Steps: res.Steps, Visited: res.Visited})
	if s.cfg.Verbose {
		s.logger.Printf("run %d: length %d, %d steps, %d tail positions", runID, res.RopeLength, res.Steps, res.Visited)
	}

	err = s.hub.BroadcastJSON(ctx, protocol.PatchEnvelope{
		Sequence: s.sequence.Add(1),
		RunID:    runID,
		Type:     protocol.PatchRunCompleted,
		Payload: protocol.RunCompleted{Summary: protocol.RunSummary{
			RopeLength: res.RopeLength,
			Steps:      res.Steps,
			Visited:    res.Visited,
			Head:       toPoint(res.Head),
			Tail:       toPoint(res.Tail),
		}},
	})
	if err != nil {
		s.logger.Printf("run %d: broadcast: %v", runID, err)
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, runID uint64, typ string, payload any) error {
	b, err := json.Marshal(protocol.PatchEnvelope{
		Sequence: s.sequence.Add(1),
		RunID:    runID,
		Type:     typ,
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := ws.Write(ctx, conn, b); err != nil {
		return fmt.Errorf("write %s: %w", typ, err)
	}
	return nil
}

func (s *Server) remember(row web.RunRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, row)
	if len(s.recent) > recentRuns {
		s.recent = s.recent[len(s.recent)-recentRuns:]
	}
}

// Serve listens on cfg.ServeAddr until ctx is cancelled.
func Serve(ctx context.Context, cfg Config, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           NewServer(cfg, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.ServeAddr)
		if cfg.Profiling {
			logger.Printf("profiles at http://%s/debug/pprof/", cfg.ServeAddr)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func toPoint(v geometry.Vec2) protocol.Point {
	return protocol.Point{X: v.X, Y: v.Y}
}

func toPoints(vs []geometry.Vec2) []protocol.Point {
	out := make([]protocol.Point, len(vs))
	for i, v := range vs {
		out[i] = toPoint(v)
	}
	return out
}
