package regarding

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/settlement"
	"github.com/LucasMoraesMarques/ExpenseManager/internal/snapshot"
)

// Common errors
var (
	ErrRegardingNotFound = errors.New("regarding not found")
	ErrAlreadyClosed     = errors.New("regarding is already closed")
)

// closeConcurrency bounds how many regardings a bulk close computes at once.
const closeConcurrency = 4

// BuildFunc produces the encoded snapshot for a loaded input. The store
// calls it inside the close transaction.
type BuildFunc func(*settlement.Input) ([]byte, error)

// Store is the persistence contract the lifecycle service depends on.
type Store interface {
	GetByID(ctx context.Context, id int64) (*Regarding, error)
	// LoadInput returns a consistent point-in-time view of the regarding's
	// memberships, expenses, items and payments.
	LoadInput(ctx context.Context, id int64) (*settlement.Input, error)
	// Close runs build over a consistent input view and persists the result
	// atomically with marking the regarding closed.
	Close(ctx context.Context, id int64, build BuildFunc) error
	ListOpenEndedBefore(ctx context.Context, day time.Time) ([]*Regarding, error)
}

// Service drives the regarding lifecycle: live summaries while open, the
// one-way close transition, and the scheduled bulk close of ended
// regardings.
type Service struct {
	store  Store
	engine *settlement.Engine
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new regarding service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		engine: settlement.NewEngine(),
		log:    logger,
		now:    time.Now,
	}
}

// Summary returns the regarding's balance data. Closed regardings read the
// persisted snapshot verbatim; open regardings recompute from live data.
func (s *Service) Summary(ctx context.Context, id int64) (*snapshot.Envelope, error) {
	regarding, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if regarding == nil {
		return nil, ErrRegardingNotFound
	}

	if regarding.IsClosed {
		return snapshot.Decode(regarding.BalanceJSON)
	}

	input, err := s.store.LoadInput(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.engine.Compute(input)
	if err != nil {
		return nil, err
	}
	return snapshot.NewEnvelope(summary, s.now()), nil
}

// Close runs the full pipeline once and freezes the result as the
// regarding's snapshot. Compute, persist and the closed flag commit in one
// transaction.
func (s *Service) Close(ctx context.Context, id int64) (*snapshot.Envelope, error) {
	var env *snapshot.Envelope
	err := s.store.Close(ctx, id, func(input *settlement.Input) ([]byte, error) {
		summary, err := s.engine.Compute(input)
		if err != nil {
			return nil, err
		}
		env = snapshot.NewEnvelope(summary, s.now())
		return snapshot.EncodeEnvelope(env)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("regarding closed", "regarding_id", id)
	return env, nil
}

// CloseReport summarizes one bulk-close run.
type CloseReport struct {
	RunID  string
	Closed []int64
	Failed map[int64]error
}

// CloseEnded closes every open regarding whose end date has passed.
// Regardings are independent, so several close transactions run in flight at
// once; one failure does not stop the rest.
func (s *Service) CloseEnded(ctx context.Context, asOf time.Time) (*CloseReport, error) {
	report := &CloseReport{
		RunID:  uuid.NewString(),
		Failed: make(map[int64]error),
	}
	logger := s.log.With("run_id", report.RunID)

	regardings, err := s.store.ListOpenEndedBefore(ctx, asOf)
	if err != nil {
		return nil, err
	}
	logger.Info("closing ended regardings", "count", len(regardings))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(closeConcurrency)
	for _, regarding := range regardings {
		regarding := regarding
		g.Go(func() error {
			_, err := s.Close(ctx, regarding.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("failed to close regarding", "regarding_id", regarding.ID, "error", err)
				report.Failed[regarding.ID] = err
				return nil
			}
			report.Closed = append(report.Closed, regarding.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("bulk close finished", "closed", len(report.Closed), "failed", len(report.Failed))
	return report, nil
}
