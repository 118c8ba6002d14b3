package models

import (
	"strconv"
	"time"
)

// SourceKind tags where a batch's raw input came from
type SourceKind string

const (
	SourceImage SourceKind = "image"
	SourceText  SourceKind = "text"
)

// Batch is one extraction event's resulting set of orders.
// JSON field names and the millisecond timestamp are frozen for
// compatibility with previously saved history.
type Batch struct {
	ID         string        `json:"id"` // Epoch-millis decimal string, assigned at creation
	Timestamp  int64         `json:"timestamp"`
	Orders     []OrderRecord `json:"orders"`
	SourceType SourceKind    `json:"sourceType"`
}

// NewBatch stamps a batch from a successful extraction. Extraction order
// of the records is preserved.
func NewBatch(orders []OrderRecord, source SourceKind, at time.Time) Batch {
	ms := at.UnixMilli()
	return Batch{
		ID:         strconv.FormatInt(ms, 10),
		Timestamp:  ms,
		Orders:     orders,
		SourceType: source,
	}
}

// Time returns the creation instant of the batch
func (b Batch) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// LocalDate returns the batch's calendar date (local time) as YYYY-MM-DD,
// the key used by the day view.
func (b Batch) LocalDate() string {
	return b.Time().Local().Format("2006-01-02")
}

// Clone returns a deep copy of the batch. The current batch and history
// hold independent copies of the same logical orders, so handing out a
// batch must never alias the stored slice.
func (b Batch) Clone() Batch {
	c := b
	c.Orders = make([]OrderRecord, len(b.Orders))
	copy(c.Orders, b.Orders)
	return c
}
