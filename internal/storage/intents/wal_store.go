// Package intents keeps a local append-only journal of submitted trade
// intents and their outcomes. The trade gate stays stateless; this log
// exists purely so the user can review what was sent to the backend.
package intents

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/mkfrx/desk/internal/domain"
)

const (
	// DefaultDir is where the journal lives unless configured otherwise.
	DefaultDir = "./wal/intents"

	segmentLimit = 1000
	maxSegments  = 10
	intentKey    = "trade_intent"
)

// Record is one journaled submission.
type Record struct {
	Side     string    `json:"side"`
	Asset    string    `json:"asset"`
	Quantity int64     `json:"qty"`
	Price    string    `json:"price"`
	Status   string    `json:"status"`
	Notice   string    `json:"notice,omitempty"`
	At       time.Time `json:"at"`
}

// IndexedRecord pairs a record with its journal index.
type IndexedRecord struct {
	Index  uint64 `json:"index"`
	Record Record `json:"record"`
}

// WALStore persists intent records in a write-ahead log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes the WAL-backed journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "intent_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init intent journal")
	}
	return &WALStore{wal: wal}, nil
}

// Record appends one submission outcome to the journal.
func (s *WALStore) Record(intent domain.TradeIntent, status, notice string) error {
	if s == nil || s.wal == nil {
		return errors.New("intent journal is not initialized")
	}

	rec := Record{
		Side:     intent.Side.String(),
		Asset:    intent.Asset,
		Quantity: intent.Quantity,
		Price:    intent.Price.String(),
		Status:   status,
		Notice:   notice,
		At:       time.Now(),
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal intent record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, intentKey, payload)
}

// RecordsAfter returns every record written after the given journal index.
func (s *WALStore) RecordsAfter(index uint64) ([]IndexedRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("intent journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]IndexedRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || key != intentKey {
			continue
		}

		var rec Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, errors.Wrap(err, "decode intent record")
		}
		records = append(records, IndexedRecord{Index: idx, Record: rec})
	}
	return records, nil
}

// CurrentIndex returns the latest journal index.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("intent journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.Close()
}
