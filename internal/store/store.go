package store

import (
	"time"
)

// Store is the persistence interface for the delivery audit log.
// Defined at the consumer side per Go conventions. Only dispatch
// outcomes are recorded — signals themselves are never persisted.
type Store interface {
	RecordDelivery(d *DeliveryRecord) error
	ListDeliveries(f DeliveryFilter) ([]DeliveryRecord, error)

	// Maintenance
	Cleanup(olderThan time.Time) error
	Close() error
}

// DeliveryRecord is one persisted dispatch outcome.
type DeliveryRecord struct {
	ID          int64
	Channel     string
	Schema      string
	TaskName    string
	Status      string
	TaskType    string
	DurationSec int
	OK          bool
	Failure     string
	Diagnostic  string
	FellBack    bool
	Attempts    int
	CreatedAt   time.Time
}

// DeliveryFilter specifies criteria for listing deliveries.
type DeliveryFilter struct {
	Channel string
	OK      *bool // nil = both
	Limit   int
	Since   time.Time
}
