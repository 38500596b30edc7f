package models

// SyncRow is one versioned row produced by a scoped read query. Value holds
// the JSON-serializable entity DTO that ends up inside a put operation.
type SyncRow struct {
	ID      string
	Version int64
	Value   any
}
