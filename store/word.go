package store

// Word is a global dictionary entry, independent of any user.
// Identity is the (text, language) pair; text is immutable after creation,
// language may be corrected if a later lookup resolves differently.
type Word struct {
	ID        int32
	UID       string
	Text      string
	Language  string
	CreatedTs int64
	UpdatedTs int64
}

// FindWord specifies the conditions for finding a word.
type FindWord struct {
	ID       *int32
	Text     *string
	Language *string
}

// UpdateWord specifies the data for updating a word.
// Only the language is mutable.
type UpdateWord struct {
	ID       int32
	Language *string
}

// DeleteWord specifies the word to delete.
// Dependent content cards and vocabulary memberships are cascade-deleted.
type DeleteWord struct {
	ID int32
}
