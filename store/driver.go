package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// UserProfile model related methods.
	UpsertUserProfile(ctx context.Context, upsert *UpsertUserProfile) (*UserProfile, error)
	GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error)
	DeleteUserProfile(ctx context.Context, delete *DeleteUserProfile) error

	// Word model related methods.
	CreateWord(ctx context.Context, create *Word) (*Word, error)
	GetWord(ctx context.Context, find *FindWord) (*Word, error)
	UpdateWord(ctx context.Context, update *UpdateWord) (*Word, error)
	DeleteWord(ctx context.Context, delete *DeleteWord) error

	// ContentCard model related methods.
	CreateContentCard(ctx context.Context, create *ContentCard) (*ContentCard, error)
	GetContentCard(ctx context.Context, find *FindContentCard) (*ContentCard, error)
	ListContentCards(ctx context.Context, find *FindContentCard) ([]*ContentCard, error)

	// VocabularyMembership model related methods.
	CreateVocabularyMembership(ctx context.Context, create *VocabularyMembership) (*VocabularyMembership, error)
	GetVocabularyMembership(ctx context.Context, find *FindVocabularyMembership) (*VocabularyMembership, error)
	ListVocabularyMemberships(ctx context.Context, find *FindVocabularyMembership) ([]*VocabularyMembership, error)
	UpdateVocabularyMembership(ctx context.Context, update *UpdateVocabularyMembership) (*VocabularyMembership, error)
	DeleteVocabularyMembership(ctx context.Context, delete *DeleteVocabularyMembership) error

	// InterestGraph model related methods.
	GetInterestGraph(ctx context.Context, find *FindInterestGraph) (*InterestGraphRecord, error)
	UpdateInterestGraph(ctx context.Context, update *UpdateInterestGraph) (*InterestGraphRecord, error)
}
