package store

const (
	// MinFamiliarity is the rating for a newly saved word.
	MinFamiliarity int32 = 1
	// MaxFamiliarity is the rating for a mastered word.
	MaxFamiliarity int32 = 5
)

// VocabularyMembership links one user to one content card with a per-user
// familiarity rating. A user references a given card at most once.
type VocabularyMembership struct {
	ID          int32
	UserID      int32
	CardID      int32
	Familiarity int32
	AddedTs     int64
	UpdatedTs   int64
}

// FindVocabularyMembership specifies the conditions for finding memberships.
type FindVocabularyMembership struct {
	ID     *int32
	UserID *int32
	CardID *int32
}

// UpdateVocabularyMembership specifies the data for updating a membership.
type UpdateVocabularyMembership struct {
	ID          int32
	Familiarity *int32
}

// DeleteVocabularyMembership specifies the membership to delete, identified
// by its (user, card) pair.
type DeleteVocabularyMembership struct {
	UserID int32
	CardID int32
}
