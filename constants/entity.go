package constants

// EntityKind names a store collection.
type EntityKind string

const (
	EntityDocument EntityKind = "document"
	EntityReport   EntityKind = "report"
	EntitySettings EntityKind = "settings"
)
