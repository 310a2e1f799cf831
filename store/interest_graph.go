package store

// InterestGraphRecord is the persisted form of a user's weighted interest
// graph: a single serialized document plus a version stamp. The graph is
// read, mutated in memory, and written back wholesale; the version column
// makes the write a compare-and-swap so concurrent interactions cannot
// silently lose updates.
type InterestGraphRecord struct {
	UserID    int32
	Payload   string // JSON document: label -> serialized interest score
	Version   int32
	CreatedTs int64
	UpdatedTs int64
}

// FindInterestGraph specifies the conditions for finding an interest graph.
type FindInterestGraph struct {
	UserID *int32
}

// UpdateInterestGraph specifies a compare-and-swap write of the whole graph.
// ExpectedVersion 0 means the caller read no existing record; the write then
// inserts a fresh row. A stale version fails with ErrVersionConflict.
type UpdateInterestGraph struct {
	UserID          int32
	Payload         string
	ExpectedVersion int32
}
