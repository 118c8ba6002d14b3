package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderflow/orderflowgo/internal/history"
	"github.com/orderflow/orderflowgo/internal/models"
)

// memKeystore is an in-memory history.Keystore for tests
type memKeystore struct {
	data map[string][]byte
}

func newMemKeystore() *memKeystore {
	return &memKeystore{data: map[string][]byte{}}
}

func (m *memKeystore) Load(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, history.ErrNotFound
	}
	return v, nil
}

func (m *memKeystore) Save(key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// fakeExtractor returns canned records or an error; release, when set,
// blocks the call until closed.
type fakeExtractor struct {
	records []models.OrderRecord
	err     error
	release chan struct{}
	calls   int
}

func (f *fakeExtractor) ExtractText(ctx context.Context, text string) ([]models.OrderRecord, error) {
	f.calls++
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.OrderRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeExtractor) ExtractImage(ctx context.Context, data []byte, mimeType string) ([]models.OrderRecord, error) {
	return f.ExtractText(ctx, "")
}

func pendingOrder(id string) models.OrderRecord {
	return models.OrderRecord{
		OrderID: id,
		Name:    "Fariya Akter",
		Contact: "01836571137",
		CodBill: "650",
		Address: "Duaripara Bazar",
		Status:  models.OrderStatusPending,
	}
}

func newTestService(ext *fakeExtractor) (*Service, *history.Store) {
	store := history.NewStore(newMemKeystore())
	svc := NewService(store, ext, nil, "Agent Rahim")
	return svc, store
}

func TestProcessTextCreatesBatchOnBothSurfaces(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001"), pendingOrder("OF-1002")}}
	svc, store := newTestService(ext)

	batch, err := svc.ProcessText(context.Background(), "some pasted table")
	if err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}
	if len(batch.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(batch.Orders))
	}
	if batch.SourceType != models.SourceText {
		t.Errorf("source kind = %s, want text", batch.SourceType)
	}

	current, ok := svc.CurrentBatch()
	if !ok || current.ID != batch.ID {
		t.Error("extraction result should become the current batch")
	}
	if store.Len() != 1 {
		t.Errorf("extraction result should be appended to history, got %d batches", store.Len())
	}
}

func TestProcessRejectsBlankInputBeforeGateway(t *testing.T) {
	ext := &fakeExtractor{}
	svc, store := newTestService(ext)

	if _, err := svc.ProcessText(context.Background(), "  \n\t "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if ext.calls != 0 {
		t.Error("gateway must not be called for blank input")
	}
	if store.Len() != 0 {
		t.Error("no state change on input error")
	}
}

func TestProcessGatewayFailureCreatesNoBatch(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("upstream fault")}
	svc, store := newTestService(ext)

	if _, err := svc.ProcessText(context.Background(), "data"); err == nil {
		t.Fatal("expected gateway error")
	}
	if _, ok := svc.CurrentBatch(); ok {
		t.Error("failed extraction must not install a current batch")
	}
	if store.Len() != 0 {
		t.Error("failed extraction must not touch history")
	}

	// The gateway is usable again after a failure
	ext.err = nil
	ext.records = []models.OrderRecord{pendingOrder("OF-1001")}
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Errorf("retry after failure should work: %v", err)
	}
}

func TestSecondExtractionWhileOutstandingIsRejected(t *testing.T) {
	ext := &fakeExtractor{
		records: []models.OrderRecord{pendingOrder("OF-1001")},
		release: make(chan struct{}),
	}
	svc, _ := newTestService(ext)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ProcessText(context.Background(), "first")
		done <- err
	}()

	// Wait until the first call is inside the gateway
	deadline := time.After(2 * time.Second)
	for !svc.Processing() {
		select {
		case <-deadline:
			t.Fatal("first extraction never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := svc.ProcessText(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for overlapping extraction, got %v", err)
	}

	// Status transitions stay available while the call is outstanding
	svc.MarkOutForDelivery("OF-0000") // absent id, must not deadlock

	close(ext.release)
	if err := <-done; err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	if ext.calls != 1 {
		t.Errorf("rejected extraction must not reach the gateway, calls=%d", ext.calls)
	}
}

func TestMarkDeliveredPropagatesToEveryCopy(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001")}}
	svc, store := newTestService(ext)

	// Two history batches holding the same id, then a current batch with it too
	store.Append(models.NewBatch([]models.OrderRecord{pendingOrder("OF-1001")}, models.SourceText,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)))
	store.Append(models.NewBatch([]models.OrderRecord{pendingOrder("OF-1001"), pendingOrder("OF-1002")}, models.SourceImage,
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)))

	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}

	fixed := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	svc.MarkDelivered("OF-1001")

	wantTime := models.NowRFC3339(fixed)
	copies := 0

	current, _ := svc.CurrentBatch()
	for _, o := range current.Orders {
		if o.OrderID == "OF-1001" {
			copies++
			if o.Status != models.OrderStatusDelivered || o.DeliveryTime != wantTime || o.DeliveryAgent != "Agent Rahim" {
				t.Errorf("current copy not fully delivered: %+v", o)
			}
		}
	}
	for _, b := range store.Batches() {
		for _, o := range b.Orders {
			if o.OrderID == "OF-1001" {
				copies++
				if o.Status != models.OrderStatusDelivered || o.DeliveryTime != wantTime {
					t.Errorf("history copy diverged: %+v", o)
				}
			} else if o.Status != models.OrderStatusPending {
				t.Errorf("unrelated order %s was touched", o.OrderID)
			}
		}
	}
	if copies != 4 {
		t.Errorf("expected 4 copies updated (1 current + 3 history), got %d", copies)
	}
}

func TestTransitionsAreIdempotentAndTerminalStatesSilentlyIgnored(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001")}}
	svc, _ := newTestService(ext)
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}

	svc.MarkOutForDelivery("OF-1001")
	svc.MarkOutForDelivery("OF-1001") // repeat is a no-op

	current, _ := svc.CurrentBatch()
	if current.Orders[0].Status != models.OrderStatusOutForDelivery {
		t.Fatalf("status = %s, want Out for Delivery", current.Orders[0].Status)
	}

	svc.MarkDelivered("OF-1001")

	// Terminal: neither cancel nor a repeated delivery changes anything
	firstStamp, _ := svc.CurrentBatch()
	if err := svc.Cancel("OF-1001", "Customer not available"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	svc.MarkDelivered("OF-1001")

	after, _ := svc.CurrentBatch()
	got := after.Orders[0]
	if got.Status != models.OrderStatusDelivered {
		t.Errorf("terminal order changed status to %s", got.Status)
	}
	if got.CancelReason != "" {
		t.Error("cancel against a delivered order must not set a reason")
	}
	if got.DeliveryTime != firstStamp.Orders[0].DeliveryTime {
		t.Error("repeated delivery must not restamp delivery_time")
	}
	if err := got.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestPendingOrderCancelsDirectly(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001")}}
	svc, _ := newTestService(ext)
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Cancel("OF-1001", "Address incorrect"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	current, _ := svc.CurrentBatch()
	got := current.Orders[0]
	if got.Status != models.OrderStatusCancelled || got.CancelReason != "Address incorrect" {
		t.Errorf("cancel not applied: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestCancelRequiresNonEmptyReason(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001")}}
	svc, _ := newTestService(ext)
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}

	for _, reason := range []string{"", "   ", "\n\t"} {
		if err := svc.Cancel("OF-1001", reason); !errors.Is(err, ErrEmptyReason) {
			t.Errorf("Cancel(%q) = %v, want ErrEmptyReason", reason, err)
		}
	}
	current, _ := svc.CurrentBatch()
	if current.Orders[0].Status != models.OrderStatusPending {
		t.Error("rejected cancel must not change state")
	}
}

func TestEditFieldsReplacesOnlyEditableFieldsEverywhere(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-1001")}}
	svc, store := newTestService(ext)
	store.Append(models.NewBatch([]models.OrderRecord{pendingOrder("OF-1001")}, models.SourceText,
		time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)))
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}

	svc.MarkOutForDelivery("OF-1001")
	svc.EditFields("OF-1001", models.OrderPatch{
		Name:    "Nasrin Sultana",
		Contact: "01700000000",
		CodBill: "1250",
		Address: "Mirpur 11",
	})

	check := func(o models.OrderRecord, where string) {
		if o.Name != "Nasrin Sultana" || o.Contact != "01700000000" || o.CodBill != "1250" || o.Address != "Mirpur 11" {
			t.Errorf("%s copy not patched: %+v", where, o)
		}
		if o.Status != models.OrderStatusOutForDelivery {
			t.Errorf("%s copy status changed by edit: %s", where, o.Status)
		}
	}
	current, _ := svc.CurrentBatch()
	check(current.Orders[0], "current")
	for _, b := range store.Batches() {
		check(b.Orders[0], "history")
	}
}

func TestViewSelectionPrefersCurrentBatch(t *testing.T) {
	ext := &fakeExtractor{records: []models.OrderRecord{pendingOrder("OF-2001")}}
	svc, store := newTestService(ext)

	today := time.Now().Local().Format("2006-01-02")
	store.Append(models.NewBatch([]models.OrderRecord{pendingOrder("OF-1001")}, models.SourceText, time.Now()))

	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}

	got := svc.Orders(today, "All")
	if len(got) != 1 || got[0].OrderID != "OF-2001" {
		t.Fatalf("with a current batch the view must show it, got %+v", got)
	}

	// Never both surfaces merged
	svc.ClearCurrent()
	got = svc.Orders(today, "All")
	// History now holds the old batch plus the extracted one
	if len(got) != 2 {
		t.Fatalf("day view should show history orders, got %d", len(got))
	}
}

func TestStatusFilterPreservesRelativeOrder(t *testing.T) {
	records := []models.OrderRecord{
		pendingOrder("OF-1001"), pendingOrder("OF-1002"), pendingOrder("OF-1003"),
		pendingOrder("OF-1004"), pendingOrder("OF-1005"),
	}
	ext := &fakeExtractor{records: records}
	svc, _ := newTestService(ext)
	if _, err := svc.ProcessText(context.Background(), "data"); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"OF-1001", "OF-1003", "OF-1005"} {
		if err := svc.Cancel(id, "Phone unreachable"); err != nil {
			t.Fatal(err)
		}
	}

	got := svc.Orders("", string(models.OrderStatusCancelled))
	if len(got) != 3 {
		t.Fatalf("expected 3 cancelled orders, got %d", len(got))
	}
	wantOrder := []string{"OF-1001", "OF-1003", "OF-1005"}
	for i, o := range got {
		if o.OrderID != wantOrder[i] {
			t.Errorf("filtered order %d = %s, want %s", i, o.OrderID, wantOrder[i])
		}
	}
}

func TestLoadFromHistoryAndDeleteHistory(t *testing.T) {
	ext := &fakeExtractor{}
	svc, store := newTestService(ext)
	b := models.NewBatch([]models.OrderRecord{pendingOrder("OF-1001")}, models.SourceImage,
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local))
	store.Append(b)

	loaded, ok := svc.LoadFromHistory(b.ID)
	if !ok || loaded.ID != b.ID {
		t.Fatal("LoadFromHistory should reinstate the stored batch")
	}
	if current, ok := svc.CurrentBatch(); !ok || current.ID != b.ID {
		t.Error("loaded batch should become the current batch")
	}

	if _, ok := svc.LoadFromHistory("nope"); ok {
		t.Error("loading an unknown id should fail")
	}

	svc.DeleteHistory(b.ID)
	if store.Len() != 0 {
		t.Error("DeleteHistory should remove the batch")
	}
	svc.DeleteHistory(b.ID) // no-op
}
