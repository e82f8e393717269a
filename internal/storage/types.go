package storage

import (
	"context"
	"time"
)

// IndicatorStore is the append-only persistence contract for evaluation
// outcomes. Appends are best-effort: a failed write is the caller's to log
// and drop, never a reason to stop evaluating.
type IndicatorStore interface {
	// Append writes one indicator record
	Append(ctx context.Context, rec IndicatorRecord) error

	// Records retrieves persisted records with optional filtering
	Records(ctx context.Context, filter RecordFilter) ([]StoredRecord, error)

	// Close closes the storage connection
	Close() error
}

// IndicatorRecord is one persisted evaluation outcome for one signal at one
// point in time. Immutable after creation; never updated or deleted here.
type IndicatorRecord struct {
	Timestamp   time.Time
	Name        string
	SLOTarget   float64
	SLIValue    float64
	IsBad       bool
	Period      string
	DataQuality string
}

// StoredRecord is an IndicatorRecord as read back from storage.
type StoredRecord struct {
	ID int64
	IndicatorRecord
	CreatedAt time.Time
}

// RecordFilter defines filtering options for record queries
type RecordFilter struct {
	Name      string
	OnlyBad   bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}
