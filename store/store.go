package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/store/cache"
)

// Store provides database access to all raw objects.
// Content cards are append-only, so the card cache never needs
// invalidation on update; only word deletion clears entries.
type Store struct {
	profile *profile.Profile
	driver  Driver

	cardCache        *cache.Cache // cache for content cards, keyed by composite key
	userProfileCache *cache.Cache // cache for user profiles
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:           driver,
		profile:          profile,
		cardCache:        cache.New(cacheConfig),
		userProfileCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.cardCache.Close()
	s.userProfileCache.Close()
	return s.driver.Close()
}

// UserProfile methods.

func (s *Store) UpsertUserProfile(ctx context.Context, upsert *UpsertUserProfile) (*UserProfile, error) {
	userProfile, err := s.driver.UpsertUserProfile(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userProfileCache.Set(ctx, userProfileCacheKey(userProfile.UserID), userProfile)
	return userProfile, nil
}

func (s *Store) GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error) {
	if find.UserID != nil {
		if value, ok := s.userProfileCache.Get(ctx, userProfileCacheKey(*find.UserID)); ok {
			if userProfile, ok := value.(*UserProfile); ok {
				return userProfile, nil
			}
		}
	}
	userProfile, err := s.driver.GetUserProfile(ctx, find)
	if err != nil {
		return nil, err
	}
	if userProfile != nil {
		s.userProfileCache.Set(ctx, userProfileCacheKey(userProfile.UserID), userProfile)
	}
	return userProfile, nil
}

func (s *Store) DeleteUserProfile(ctx context.Context, delete *DeleteUserProfile) error {
	if err := s.driver.DeleteUserProfile(ctx, delete); err != nil {
		return err
	}
	s.userProfileCache.Delete(ctx, userProfileCacheKey(delete.UserID))
	return nil
}

// Word methods.

func (s *Store) CreateWord(ctx context.Context, create *Word) (*Word, error) {
	return s.driver.CreateWord(ctx, create)
}

func (s *Store) GetWord(ctx context.Context, find *FindWord) (*Word, error) {
	return s.driver.GetWord(ctx, find)
}

func (s *Store) UpdateWord(ctx context.Context, update *UpdateWord) (*Word, error) {
	return s.driver.UpdateWord(ctx, update)
}

func (s *Store) DeleteWord(ctx context.Context, delete *DeleteWord) error {
	if err := s.driver.DeleteWord(ctx, delete); err != nil {
		return err
	}
	// Cascaded card rows are gone; drop the whole card cache rather than
	// tracking which keys belonged to the word.
	s.cardCache.Clear(ctx)
	return nil
}

// ContentCard methods.

func (s *Store) CreateContentCard(ctx context.Context, create *ContentCard) (*ContentCard, error) {
	card, err := s.driver.CreateContentCard(ctx, create)
	if err != nil {
		return nil, err
	}
	s.cardCache.Set(ctx, cardCacheKey(card.Key()), card)
	return card, nil
}

func (s *Store) GetContentCard(ctx context.Context, find *FindContentCard) (*ContentCard, error) {
	if find.Key != nil {
		if value, ok := s.cardCache.Get(ctx, cardCacheKey(*find.Key)); ok {
			if card, ok := value.(*ContentCard); ok {
				return card, nil
			}
		}
	}
	card, err := s.driver.GetContentCard(ctx, find)
	if err != nil {
		return nil, err
	}
	if card != nil {
		s.cardCache.Set(ctx, cardCacheKey(card.Key()), card)
	}
	return card, nil
}

func (s *Store) ListContentCards(ctx context.Context, find *FindContentCard) ([]*ContentCard, error) {
	return s.driver.ListContentCards(ctx, find)
}

// VocabularyMembership methods.

func (s *Store) CreateVocabularyMembership(ctx context.Context, create *VocabularyMembership) (*VocabularyMembership, error) {
	return s.driver.CreateVocabularyMembership(ctx, create)
}

func (s *Store) GetVocabularyMembership(ctx context.Context, find *FindVocabularyMembership) (*VocabularyMembership, error) {
	return s.driver.GetVocabularyMembership(ctx, find)
}

func (s *Store) ListVocabularyMemberships(ctx context.Context, find *FindVocabularyMembership) ([]*VocabularyMembership, error) {
	return s.driver.ListVocabularyMemberships(ctx, find)
}

func (s *Store) UpdateVocabularyMembership(ctx context.Context, update *UpdateVocabularyMembership) (*VocabularyMembership, error) {
	return s.driver.UpdateVocabularyMembership(ctx, update)
}

func (s *Store) DeleteVocabularyMembership(ctx context.Context, delete *DeleteVocabularyMembership) error {
	return s.driver.DeleteVocabularyMembership(ctx, delete)
}

// InterestGraph methods.

func (s *Store) GetInterestGraph(ctx context.Context, find *FindInterestGraph) (*InterestGraphRecord, error) {
	return s.driver.GetInterestGraph(ctx, find)
}

func (s *Store) UpdateInterestGraph(ctx context.Context, update *UpdateInterestGraph) (*InterestGraphRecord, error) {
	return s.driver.UpdateInterestGraph(ctx, update)
}

func cardCacheKey(key ContentKey) string {
	return fmt.Sprintf("card:%d:%s:%s:%s:%s", key.WordID, key.TargetLanguage, key.TargetCEFR, key.InterestContext, key.ToneStyle)
}

func userProfileCacheKey(userID int32) string {
	return fmt.Sprintf("user_profile:%d", userID)
}
