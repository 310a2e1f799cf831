package store

// UserProfile holds the personalization-relevant profile fields for a user.
// Empty fields fall back to profile-level defaults at resolution time.
type UserProfile struct {
	UserID         int32
	Nickname       string
	Level          string // CEFR level, may be empty
	AgeGroup       string
	TargetLanguage string
	NativeLanguage string
	CreatedTs      int64
	UpdatedTs      int64
}

// FindUserProfile specifies the conditions for finding a user profile.
type FindUserProfile struct {
	UserID *int32
}

// UpsertUserProfile specifies the data for upserting a user profile.
type UpsertUserProfile struct {
	UserID         int32
	Nickname       string
	Level          string
	AgeGroup       string
	TargetLanguage string
	NativeLanguage string
}

// DeleteUserProfile specifies the profile to delete.
// The user's interest graph is cascade-deleted with it.
type DeleteUserProfile struct {
	UserID int32
}
