package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/shop-cart/internal/domain"
	"github.com/fjod/go_cart/shop-cart/pkg/logger"
)

// Recorder observes every dispatched action and its outcome.
type Recorder interface {
	ObserveAction(kind string, err error)
}

// Store owns one cart. Dispatches are serialised, so actions apply one at a
// time in the order they arrive.
type Store struct {
	mu       sync.Mutex
	state    domain.State
	products ProductFinder

	log      *slog.Logger
	recorder Recorder
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func NewStore(products ProductFinder, opts ...Option) *Store {
	s := &Store{
		products: products,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces action against the current state. The new state becomes
// current only when the reduction succeeds.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	if action == nil {
		return fmt.Errorf("%w: nil action", ErrUnknownAction)
	}

	s.mu.Lock()
	next, err := Reduce(s.state, action, s.products)
	if err == nil {
		s.state = next
	}
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.ObserveAction(action.Kind(), err)
	}

	if err != nil {
		s.log.WarnContext(ctx, "cart action rejected",
			slog.String("action", action.Kind()),
			slog.Int64("product_id", action.Product()),
			slog.Any("err", err))
		return err
	}

	s.log.DebugContext(ctx, "cart action applied",
		slog.String("action", action.Kind()),
		slog.Int64("product_id", action.Product()),
		slog.Int("lines", next.Len()))
	return nil
}

func (s *Store) AddItem(ctx context.Context, productID int64) error {
	return s.Dispatch(ctx, AddItem{ProductID: productID})
}

func (s *Store) UpdateQuantity(ctx context.Context, productID int64, delta int) error {
	return s.Dispatch(ctx, UpdateQuantity{ProductID: productID, Delta: delta})
}
