package orders

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/orderflow/orderflowgo/internal/ai"
	"github.com/orderflow/orderflowgo/internal/history"
	"github.com/orderflow/orderflowgo/internal/models"
)

var (
	// ErrBusy rejects a second extraction while one is outstanding;
	// requests are never queued.
	ErrBusy = errors.New("an extraction is already in progress")

	// ErrEmptyInput rejects blank text before the gateway is called
	ErrEmptyInput = errors.New("please enter some text to process")

	// ErrEmptyReason rejects a cancellation whose resolved reason is blank
	ErrEmptyReason = errors.New("a cancellation reason is required")
)

// Notifier is told after every successful mutation so connected
// dashboards can refresh. A nil notifier is allowed.
type Notifier interface {
	OrdersUpdated(event string)
}

// Service owns the current batch and drives every order mutation.
//
// The same logical order exists as independent copies in the current
// batch and in history; each mutation is broadcast by order id to both
// surfaces so no copy goes stale. One mutex serializes all mutations:
// each runs to completion before the next is admitted, so the
// propagation can never be observed half-applied.
type Service struct {
	mu        sync.Mutex
	histStore *history.Store
	extractor ai.Extractor
	notifier  Notifier
	agentName string

	current    *models.Batch
	processing bool

	now func() time.Time
}

// NewService wires the lifecycle engine to its collaborators.
// agentName is the identity stamped on delivered orders.
func NewService(store *history.Store, extractor ai.Extractor, notifier Notifier, agentName string) *Service {
	return &Service{
		histStore: store,
		extractor: extractor,
		notifier:  notifier,
		agentName: agentName,
		now:       time.Now,
	}
}

func (s *Service) notify(event string) {
	if s.notifier != nil {
		s.notifier.OrdersUpdated(event)
	}
}

// ProcessText runs a text extraction and installs the result as the
// current batch. A second call while one is outstanding fails with
// ErrBusy. On gateway failure no batch is created anywhere.
func (s *Service) ProcessText(ctx context.Context, text string) (models.Batch, error) {
	if isBlank(text) {
		return models.Batch{}, ErrEmptyInput
	}
	return s.process(ctx, models.SourceText, func(ctx context.Context) ([]models.OrderRecord, error) {
		return s.extractor.ExtractText(ctx, text)
	})
}

// ProcessImage runs an image extraction and installs the result as the
// current batch.
func (s *Service) ProcessImage(ctx context.Context, data []byte, mimeType string) (models.Batch, error) {
	if len(data) == 0 {
		return models.Batch{}, ErrEmptyInput
	}
	return s.process(ctx, models.SourceImage, func(ctx context.Context) ([]models.OrderRecord, error) {
		return s.extractor.ExtractImage(ctx, data, mimeType)
	})
}

func (s *Service) process(ctx context.Context, source models.SourceKind, call func(context.Context) ([]models.OrderRecord, error)) (models.Batch, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return models.Batch{}, ErrBusy
	}
	s.processing = true
	s.mu.Unlock()

	// The gateway call runs outside the lock: transitions and edits on
	// already-visible orders stay available while it is outstanding.
	records, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false

	if err != nil {
		return models.Batch{}, err
	}

	batch := models.NewBatch(records, source, s.now())
	s.histStore.Append(batch)
	s.current = &batch
	log.Printf("📋 Extracted %d orders from %s input (batch %s)", len(records), source, batch.ID)
	s.notify("batch_created")
	return batch.Clone(), nil
}

// Processing reports whether an extraction call is outstanding
func (s *Service) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// CurrentBatch returns a copy of the active working set, if any
func (s *Service) CurrentBatch() (models.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Batch{}, false
	}
	return s.current.Clone(), true
}

// ClearCurrent dismisses the active working set. History keeps its copy.
func (s *Service) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.notify("batch_cleared")
}

// LoadFromHistory reinstates a stored batch as the current working set
func (s *Service) LoadFromHistory(batchID string) (models.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.histStore.Get(batchID)
	if !ok {
		return models.Batch{}, false
	}
	s.current = &b
	s.notify("batch_loaded")
	return b.Clone(), true
}

// DeleteHistory removes one stored batch; absent ids are a no-op
func (s *Service) DeleteHistory(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histStore.Remove(batchID)
	s.notify("history_changed")
}

// ClearHistory empties the stored batch log
func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histStore.Clear()
	s.notify("history_changed")
}

// History returns all stored batches, newest first
func (s *Service) History() []models.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histStore.Batches()
}

// MarkOutForDelivery moves a Pending order out for delivery on every
// surface holding it. Repeat calls and calls against terminal orders
// change nothing.
func (s *Service) MarkOutForDelivery(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.propagate(orderID, func(o models.OrderRecord) (models.OrderRecord, bool) {
		if o.Status != models.OrderStatusPending {
			return o, false
		}
		o.Status = models.OrderStatusOutForDelivery
		return o, true
	})
	if n > 0 {
		log.Printf("🚚 Order %s out for delivery (%d copies updated)", orderID, n)
		s.notify("order_updated")
	}
}

// MarkDelivered completes an order, stamping the delivery instant and
// the acting agent identity on every copy. Terminal orders are left
// untouched.
func (s *Service) MarkDelivered(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deliveredAt := models.NowRFC3339(s.now())
	n := s.propagate(orderID, func(o models.OrderRecord) (models.OrderRecord, bool) {
		if o.Status.IsTerminal() {
			return o, false
		}
		o.Status = models.OrderStatusDelivered
		o.DeliveryTime = deliveredAt
		o.DeliveryAgent = s.agentName
		return o, true
	})
	if n > 0 {
		log.Printf("✅ Order %s delivered by %s (%d copies updated)", orderID, s.agentName, n)
		s.notify("order_updated")
	}
}

// Cancel terminates an order with the given reason. The reason must
// already be resolved to one concrete non-empty string; the Other
// free-text variant is resolved at the HTTP boundary.
func (s *Service) Cancel(orderID, reason string) error {
	if isBlank(reason) {
		return ErrEmptyReason
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.propagate(orderID, func(o models.OrderRecord) (models.OrderRecord, bool) {
		if o.Status.IsTerminal() {
			return o, false
		}
		o.Status = models.OrderStatusCancelled
		o.CancelReason = reason
		return o, true
	})
	if n > 0 {
		log.Printf("❌ Order %s cancelled: %s (%d copies updated)", orderID, reason, n)
		s.notify("order_updated")
	}
	return nil
}

// EditFields replaces the admin-editable fields on every copy of the
// order. Statuses and transition side effects are untouched.
func (s *Service) EditFields(orderID string, patch models.OrderPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.propagate(orderID, func(o models.OrderRecord) (models.OrderRecord, bool) {
		patch.Apply(&o)
		return o, true
	})
	if n > 0 {
		log.Printf("✏️ Order %s edited (%d copies updated)", orderID, n)
		s.notify("order_updated")
	}
}

// propagate rewrites every occurrence of orderID across the current
// batch and all history batches. An id absent from a surface is a no-op
// for that surface. Callers hold s.mu.
func (s *Service) propagate(orderID string, mutate func(models.OrderRecord) (models.OrderRecord, bool)) int {
	byID := func(o models.OrderRecord) (models.OrderRecord, bool) {
		if o.OrderID != orderID {
			return o, false
		}
		return mutate(o)
	}

	updated := 0
	if s.current != nil {
		for i := range s.current.Orders {
			if next, changed := byID(s.current.Orders[i]); changed {
				s.current.Orders[i] = next
				updated++
			}
		}
	}
	updated += s.histStore.Rewrite(byID)
	return updated
}

// Orders returns the selected view: the current batch when one exists,
// otherwise the history day view for date, with the status filter
// applied after selection.
func (s *Service) Orders(date string, filter string) []models.OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterByStatus(s.sourceLocked(date), filter)
}

// DayOrders returns the history-derived day view regardless of the
// current batch; reports are always sourced from it.
func (s *Service) DayOrders(date string) []models.OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histStore.FindByDate(date)
}

func (s *Service) sourceLocked(date string) []models.OrderRecord {
	if s.current != nil {
		out := make([]models.OrderRecord, len(s.current.Orders))
		copy(out, s.current.Orders)
		return out
	}
	return s.histStore.FindByDate(date)
}

func filterByStatus(orders []models.OrderRecord, filter string) []models.OrderRecord {
	if filter == "" || filter == "All" {
		return orders
	}
	var out []models.OrderRecord
	for _, o := range orders {
		if string(o.Status) == filter {
			out = append(out, o)
		}
	}
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
