// Package mint serves flake IDs from a single Generator shared by many callers.
package mint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mantono/flakeid/pkg/flake"
	"github.com/mantono/flakeid/pkg/log"
)

// MaxBatch is the largest number of IDs returned by one MintN call.
const MaxBatch = 1000

// ErrBatchSize is returned by MintN for a count outside 1..MaxBatch.
var ErrBatchSize = fmt.Errorf("batch size must be between 1 and %d", MaxBatch)

// retryInterval is how long to wait before retrying an exhausted millisecond.
const retryInterval = 100 * time.Microsecond

// Service serializes access to a Generator. Exhausted milliseconds are waited
// out; clock drift is reported to the caller.
type Service struct {
	mu  sync.Mutex
	gen *flake.Generator

	logger  log.Logger
	metrics *Metrics
}

// Config parameters to create a new Service.
type Config struct {
	Generator *flake.Generator
	Logger    log.Logger
	Metrics   *Metrics
}

// New creates a Service.
func New(config Config) *Service {
	s := &Service{
		gen:     config.Generator,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
	if s.logger == nil {
		s.logger = log.Nop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Node returns the node identifier of the underlying Generator.
func (s *Service) Node() uint64 { return s.gen.Node() }

func (s *Service) tryNext() (flake.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.TryNext()
}

// Mint returns a new ID. If the current millisecond is exhausted, Mint waits
// for the next one until ctx is done.
func (s *Service) Mint(ctx context.Context) (flake.ID, error) {
	ctx = log.WithDefault(ctx, s.logger)
	for {
		id, err := s.tryNext()
		if err == nil {
			s.metrics.minted.Inc()
			return id, nil
		}

		s.metrics.failure(err)
		if !errors.Is(err, flake.ErrExhausted) {
			log.Info(log.FromContext(ctx)).Log("msg", "generate id", "err", err, "node", s.gen.Node())
			return flake.Nil, fmt.Errorf("mint id: %w", err)
		}

		s.metrics.waits.Inc()
		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return flake.Nil, fmt.Errorf("wait for next millisecond: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// MintN returns n new IDs in increasing order.
func (s *Service) MintN(ctx context.Context, n int) ([]flake.ID, error) {
	if n < 1 || n > MaxBatch {
		return nil, ErrBatchSize
	}
	s.metrics.batch.Observe(float64(n))
	ctx = log.WithDefault(ctx, s.logger)

	ids := make([]flake.ID, 0, n)
	for i := 0; i < n; i++ {
		id, err := s.Mint(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	log.Debug(log.FromContext(ctx)).Log("msg", "minted ids", "count", n, "first", ids[0])
	return ids, nil
}

// TraceID mints an ID for use as a request trace id. It returns an empty
// string when no ID is available right away.
func (s *Service) TraceID() string {
	id, err := s.tryNext()
	if err != nil {
		s.metrics.failure(err)
		return ""
	}
	s.metrics.minted.Inc()
	return id.String()
}

// Fields is the decoded form of an ID.
type Fields struct {
	ID        flake.ID  `json:"id"`
	Timestamp uint64    `json:"timestamp"`
	Time      time.Time `json:"time"`
	Node      uint64    `json:"node"`
	Sequence  uint16    `json:"sequence"`
	Hex       string    `json:"hex"`
}

// Decode parses the canonical text form of an ID into its fields.
func Decode(s string) (*Fields, error) {
	id, err := flake.Parse(s)
	if err != nil {
		return nil, err
	}
	return FieldsOf(id), nil
}

// FieldsOf returns the fields of id.
func FieldsOf(id flake.ID) *Fields {
	return &Fields{
		ID:        id,
		Timestamp: id.Timestamp(),
		Time:      id.Time(),
		Node:      id.Node(),
		Sequence:  id.Sequence(),
		Hex:       fmt.Sprintf("%x", id),
	}
}
