// Package stream validates JSONL requests from a long-running caller with a
// fixed worker pool against the live catalog snapshot.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patuh/patuh/internal/compliance"
	"github.com/patuh/patuh/internal/ingest"
	"github.com/patuh/patuh/internal/metrics"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
)

// Request is one line of input. ID is echoed back verbatim.
type Request struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Kind        string          `json:"kind"`
	Text        *string         `json:"text,omitempty"`
	Record      json.RawMessage `json:"record,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
}

// Response is one line of output. Exactly one of Result and Error is set.
type Response struct {
	ID             json.RawMessage          `json:"id,omitempty"`
	Result         *models.ValidationResult `json:"result,omitempty"`
	Error          string                   `json:"error,omitempty"`
	CatalogVersion string                   `json:"catalog_version"`
}

// Config for a Server
type Config struct {
	Workers     int // default: GOMAXPROCS
	MaxLineSize int // default: MaxLineSize
}

// Stats of a Serve call
type Stats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
}

// Server answers validation requests. Responses are written in completion
// order; callers correlate them by id.
type Server struct {
	store   *compliance.Store
	workers int
	maxLine int
	log     logging.Logger
	metrics *metrics.Collector

	requests atomic.Int64
	errs     atomic.Int64
	writeMu  sync.Mutex
}

func NewServer(store *compliance.Store, cfg Config, log logging.Logger, m *metrics.Collector) *Server {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Server{
		store:   store,
		workers: workers,
		maxLine: cfg.MaxLineSize,
		log:     log,
		metrics: m,
	}
}

// Serve reads requests from in until EOF or ctx is done. A read error other
// than EOF is returned after in-flight requests finish.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	jobs := make(chan []byte, s.workers)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range jobs {
				s.write(out, s.handleLine(line))
			}
		}()
	}

	reader := NewLimitedLineReader(in, s.maxLine)
	var readErr error
loop:
	for {
		line, err := reader.ReadLineCopy()
		switch {
		case errors.Is(err, ErrLineTooLong):
			s.requests.Add(1)
			s.log.Warn("stream", "oversized request dropped", "max_bytes", reader.maxSize)
			s.write(out, s.errorResponse(nil, err))
			continue
		case err == io.EOF:
			break loop
		case err != nil:
			readErr = fmt.Errorf("failed to read request: %w", err)
			break loop
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		s.requests.Add(1)
		select {
		case jobs <- line:
		case <-ctx.Done():
			break loop
		}
	}

	close(jobs)
	wg.Wait()
	return Stats{Requests: s.requests.Load(), Errors: s.errs.Load()}, readErr
}

func (s *Server) handleLine(line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return s.errorResponse(nil, fmt.Errorf("invalid request: %w", err))
	}
	return s.Handle(req)
}

// Handle validates one request against the store's current engine.
func (s *Server) Handle(req Request) Response {
	engine := s.store.Engine()

	kind, err := ingest.ParseKind(req.Kind)
	if err != nil {
		return s.errorResponse(req.ID, err)
	}

	item := &ingest.Item{Kind: kind, ContentType: req.ContentType}
	if kind.IsRecord() {
		if len(req.Record) == 0 {
			return s.errorResponse(req.ID, fmt.Errorf("%s request requires a record: %w", kind, compliance.ErrInvalidInput))
		}
		decoded, err := ingest.DecodeRecord(kind, req.Record)
		if err != nil {
			return s.errorResponse(req.ID, err)
		}
		item.Citation, item.Saying = decoded.Citation, decoded.Saying
	} else {
		// "text":"" is valid input; an absent key is not.
		if req.Text == nil {
			return s.errorResponse(req.ID, fmt.Errorf("%s request requires text: %w", kind, compliance.ErrInvalidInput))
		}
		item.Text = *req.Text
	}

	start := time.Now()
	res, err := ingest.Validate(engine, item)
	if err != nil {
		s.metrics.ObserveError(kind.Validator())
		return s.errorResponse(req.ID, err)
	}
	s.metrics.ObserveValidation(res, time.Since(start))
	return Response{ID: req.ID, Result: res, CatalogVersion: engine.Version()}
}

func (s *Server) errorResponse(id json.RawMessage, err error) Response {
	s.errs.Add(1)
	resp := Response{ID: id, Error: err.Error()}
	if e := s.store.Engine(); e != nil {
		resp.CatalogVersion = e.Version()
	}
	return resp
}

func (s *Server) write(out io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("stream", "failed to marshal response", "error", err.Error())
		return
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := out.Write(data); err != nil {
		s.log.Error("stream", "failed to write response", "error", err.Error())
	}
}
