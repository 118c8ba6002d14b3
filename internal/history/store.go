package history

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/orderflow/orderflowgo/internal/models"
)

// Capacity bounds the history log; the oldest batch is evicted when a new
// one pushes the list past it.
const Capacity = 50

// Store is the durable, capacity-bounded log of extraction batches,
// newest first. Every mutation writes the full list through to the
// keystore; a corrupt or missing saved list loads as empty.
//
// Store is not safe for concurrent use; the orders service serializes
// access to it.
type Store struct {
	keystore Keystore
	batches  []models.Batch
}

// NewStore creates a store and loads previously saved history.
// Unreadable saved data is logged and treated as an empty store.
func NewStore(ks Keystore) *Store {
	s := &Store{keystore: ks}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := s.keystore.Load(models.HistoryStateKey)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("⚠️ History: failed to read saved history, starting empty: %v", err)
		return
	}
	var batches []models.Batch
	if err := json.Unmarshal(data, &batches); err != nil {
		log.Printf("⚠️ History: saved history is corrupt, starting empty: %v", err)
		return
	}
	s.batches = batches
	log.Printf("📂 History: loaded %d saved batches", len(batches))
}

func (s *Store) persist() {
	data, err := json.Marshal(s.batches)
	if err != nil {
		log.Printf("⚠️ History: failed to serialize history: %v", err)
		return
	}
	if err := s.keystore.Save(models.HistoryStateKey, data); err != nil {
		log.Printf("⚠️ History: failed to save history: %v", err)
	}
}

// Append inserts the batch at the front, evicting the oldest entry when
// the list exceeds capacity.
func (s *Store) Append(b models.Batch) {
	s.batches = append([]models.Batch{b.Clone()}, s.batches...)
	if len(s.batches) > Capacity {
		s.batches = s.batches[:Capacity]
	}
	s.persist()
}

// Remove deletes the batch with the given id. Removing an absent id is a
// no-op, not an error.
func (s *Store) Remove(batchID string) {
	for i, b := range s.batches {
		if b.ID == batchID {
			s.batches = append(s.batches[:i], s.batches[i+1:]...)
			s.persist()
			return
		}
	}
}

// Clear empties the store unconditionally
func (s *Store) Clear() {
	s.batches = nil
	s.persist()
}

// Get returns a copy of the batch with the given id
func (s *Store) Get(batchID string) (models.Batch, bool) {
	for _, b := range s.batches {
		if b.ID == batchID {
			return b.Clone(), true
		}
	}
	return models.Batch{}, false
}

// Len returns the number of stored batches
func (s *Store) Len() int {
	return len(s.batches)
}

// Batches returns a copy of all stored batches, newest first
func (s *Store) Batches() []models.Batch {
	out := make([]models.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b.Clone())
	}
	return out
}

// FindByDate concatenates, in stored order, the orders of every batch
// whose local calendar date equals date (YYYY-MM-DD).
func (s *Store) FindByDate(date string) []models.OrderRecord {
	var orders []models.OrderRecord
	for _, b := range s.batches {
		if b.LocalDate() == date {
			orders = append(orders, b.Orders...)
		}
	}
	return orders
}

// Rewrite applies fn to every order in every batch, replacing the order
// with fn's result when changed is true. The list is persisted once when
// at least one order changed. This is the history half of the
// dual-surface propagation.
func (s *Store) Rewrite(fn func(models.OrderRecord) (models.OrderRecord, bool)) int {
	updated := 0
	for bi := range s.batches {
		for oi := range s.batches[bi].Orders {
			if next, changed := fn(s.batches[bi].Orders[oi]); changed {
				s.batches[bi].Orders[oi] = next
				updated++
			}
		}
	}
	if updated > 0 {
		s.persist()
	}
	return updated
}
