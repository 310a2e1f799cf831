// Package vocabulary implements the personalization resolver: given a user
// and a raw word, it returns a content card (reused from the composite-key
// cache when one exists, generated and persisted otherwise) along with the
// user's membership linking them to that card.
package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goerrors "errors"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/server/ai"
	"github.com/wordfolio/wordfolio/server/internal/errors"
	"github.com/wordfolio/wordfolio/internal/observability"
	"github.com/wordfolio/wordfolio/server/internal/ratelimit"
	"github.com/wordfolio/wordfolio/server/service/interest"
	"github.com/wordfolio/wordfolio/store"
)

// AnonymousUserID marks requests without an identified user. Anonymous
// lookups resolve against profile defaults and never create memberships.
const AnonymousUserID int32 = 0

// Result is what a word lookup returns. Membership is nil for anonymous
// lookups.
type Result struct {
	Card       *store.ContentCard
	Membership *store.VocabularyMembership
	CacheHit   bool
}

// Entry is one row of a user's vocabulary list.
type Entry struct {
	Membership *store.VocabularyMembership
	Card       *store.ContentCard
	Word       *store.Word
}

type Service struct {
	store     *store.Store
	profile   *profile.Profile
	generator ai.Generator
	interests *interest.Service

	// generationGroup collapses concurrent misses on one cache key into a
	// single gateway call; every waiter receives the same card.
	generationGroup singleflight.Group

	// generationLimiter bounds how fast one user can trigger generation.
	generationLimiter *ratelimit.KeyedLimiter
}

func NewService(s *store.Store, p *profile.Profile, generator ai.Generator, interests *interest.Service) *Service {
	return &Service{
		store:             s,
		profile:           p,
		generator:         generator,
		interests:         interests,
		generationLimiter: ratelimit.NewKeyedLimiter(rate.Limit(2), 5),
	}
}

// preferences is the personalization tuple resolved once per lookup,
// profile values falling back to configured defaults.
type preferences struct {
	targetLanguage string
	nativeLanguage string
	level          string
	ageGroup       string
	interest       string
	tone           string
}

func (s *Service) resolvePreferences(ctx context.Context, userID int32) (*preferences, error) {
	prefs := &preferences{
		targetLanguage: s.profile.DefaultTargetLanguage,
		nativeLanguage: s.profile.DefaultNativeLanguage,
		level:          s.profile.DefaultLevel,
		ageGroup:       "adult",
		interest:       s.profile.DefaultInterest,
		tone:           s.profile.DefaultTone,
	}
	if userID == AnonymousUserID {
		return prefs, nil
	}

	userProfile, err := s.store.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if userProfile != nil {
		if userProfile.TargetLanguage != "" {
			prefs.targetLanguage = userProfile.TargetLanguage
		}
		if userProfile.NativeLanguage != "" {
			prefs.nativeLanguage = userProfile.NativeLanguage
		}
		if userProfile.Level != "" {
			prefs.level = userProfile.Level
		}
		if userProfile.AgeGroup != "" {
			prefs.ageGroup = userProfile.AgeGroup
		}
	}

	top, err := s.interests.TopInterest(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs.interest = top
	return prefs, nil
}

// FetchWordContent resolves a word lookup end to end: normalize, find or
// create the word, consult the card cache, generate on a miss, and link
// the user to the result. A gateway failure degrades to a persisted
// fallback card; only empty input is rejected.
func (s *Service) FetchWordContent(ctx context.Context, userID int32, wordText string) (*Result, error) {
	normalized := strings.ToLower(strings.TrimSpace(wordText))
	if normalized == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "word text must not be empty")
	}

	prefs, err := s.resolvePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	word, err := s.findOrCreateWord(ctx, normalized, prefs.targetLanguage)
	if err != nil {
		return nil, err
	}

	key := store.ContentKey{
		WordID:          word.ID,
		TargetLanguage:  prefs.targetLanguage,
		TargetCEFR:      prefs.level,
		InterestContext: prefs.interest,
		ToneStyle:       prefs.tone,
	}
	card, err := s.store.GetContentCard(ctx, &store.FindContentCard{Key: &key})
	if err != nil {
		return nil, err
	}
	cacheHit := card != nil

	if card == nil {
		if err := s.generationLimiter.Wait(ctx, fmt.Sprintf("user:%d", userID)); err != nil {
			return nil, err
		}
		card, err = s.generateCard(ctx, word, key, prefs)
		if err != nil {
			return nil, err
		}
	}

	s.logLookup(ctx, normalized, prefs.interest, cacheHit)

	membership, err := s.findOrCreateMembership(ctx, userID, card.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Card: card, Membership: membership, CacheHit: cacheHit}, nil
}

// findOrCreateWord resolves the global word row for the normalized text.
// Lookup is by text alone; a stored language that drifted from the
// resolved target language is corrected in place.
func (s *Service) findOrCreateWord(ctx context.Context, text, language string) (*store.Word, error) {
	word, err := s.store.GetWord(ctx, &store.FindWord{Text: &text})
	if err != nil {
		return nil, err
	}
	if word == nil {
		word, err = s.store.CreateWord(ctx, &store.Word{
			UID:      shortuuid.New(),
			Text:     text,
			Language: language,
		})
		if err == nil {
			return word, nil
		}
		if !goerrors.Is(err, store.ErrAlreadyExists) {
			return nil, err
		}
		// Lost the creation race; the winner's row is authoritative.
		word, err = s.store.GetWord(ctx, &store.FindWord{Text: &text})
		if err != nil {
			return nil, err
		}
		if word == nil {
			return nil, errors.Newf(errors.ErrCodeNotFound, "word %q vanished after duplicate insert", text)
		}
	}
	if word.Language != language {
		word, err = s.store.UpdateWord(ctx, &store.UpdateWord{ID: word.ID, Language: &language})
		if err != nil {
			return nil, err
		}
	}
	return word, nil
}

// generateCard produces and persists a card for a cache miss. Concurrent
// misses on the same key share one gateway call. The gateway's resolved
// level and language are trusted when valid; anything else falls back to
// the requested tuple. Gateway failure yields a minimal fallback card so
// the lookup still completes with a persisted, reusable result.
func (s *Service) generateCard(ctx context.Context, word *store.Word, key store.ContentKey, prefs *preferences) (*store.ContentCard, error) {
	flightKey := fmt.Sprintf("%d:%s:%s:%s:%s", key.WordID, key.TargetLanguage, key.TargetCEFR, key.InterestContext, key.ToneStyle)
	value, err, _ := s.generationGroup.Do(flightKey, func() (any, error) {
		card := s.buildCard(ctx, word, key, prefs)
		created, err := s.store.CreateContentCard(ctx, card)
		if err == nil {
			return created, nil
		}
		if !goerrors.Is(err, store.ErrAlreadyExists) {
			return nil, err
		}
		// Another request created a card for this key between our miss and
		// our insert; reuse theirs.
		existingKey := card.Key()
		existing, err := s.store.GetContentCard(ctx, &store.FindContentCard{Key: &existingKey})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, errors.Newf(errors.ErrCodeNotFound, "content card for %q vanished after duplicate insert", word.Text)
		}
		return existing, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*store.ContentCard), nil
}

// buildCard maps a gateway response onto a new card, or builds the
// fallback card when the gateway fails.
func (s *Service) buildCard(ctx context.Context, word *store.Word, key store.ContentKey, prefs *preferences) *store.ContentCard {
	card := &store.ContentCard{
		UID:             shortuuid.New(),
		WordID:          word.ID,
		TargetLanguage:  key.TargetLanguage,
		TargetCEFR:      key.TargetCEFR,
		InterestContext: key.InterestContext,
		ToneStyle:       key.ToneStyle,
	}

	content, err := s.generator.Generate(ctx, word.Text, ai.PersonalizationContext{
		AgeGroup:       prefs.ageGroup,
		Level:          prefs.level,
		TargetLanguage: prefs.targetLanguage,
		NativeLanguage: prefs.nativeLanguage,
		Interests:      []string{prefs.interest},
		Tone:           prefs.tone,
	})
	if err != nil {
		s.logGenerationFailure(ctx, word.Text, err)
		card.Definition = fmt.Sprintf("Definition for %s", word.Text)
		card.SetExampleList(nil)
		return card
	}

	card.Definition = content.Definition
	card.Conversation = content.Conversation
	card.SetExampleList(content.Usages)
	if content.TargetLanguage != "" {
		card.TargetLanguage = content.TargetLanguage
	}
	if store.IsValidCEFRLevel(content.Level) {
		card.TargetCEFR = content.Level
	}
	return card
}

// findOrCreateMembership links the user to the card, creating the link
// with the minimum familiarity on first contact and leaving an existing
// rating untouched. Anonymous users carry no vocabulary list.
func (s *Service) findOrCreateMembership(ctx context.Context, userID, cardID int32) (*store.VocabularyMembership, error) {
	if userID == AnonymousUserID {
		return nil, nil
	}

	membership, err := s.store.GetVocabularyMembership(ctx, &store.FindVocabularyMembership{UserID: &userID, CardID: &cardID})
	if err != nil {
		return nil, err
	}
	if membership != nil {
		return membership, nil
	}

	membership, err = s.store.CreateVocabularyMembership(ctx, &store.VocabularyMembership{
		UserID:      userID,
		CardID:      cardID,
		Familiarity: store.MinFamiliarity,
	})
	if err == nil {
		return membership, nil
	}
	if !goerrors.Is(err, store.ErrAlreadyExists) {
		return nil, err
	}
	return s.store.GetVocabularyMembership(ctx, &store.FindVocabularyMembership{UserID: &userID, CardID: &cardID})
}

// SetFamiliarity updates the user's rating for a card they have saved.
func (s *Service) SetFamiliarity(ctx context.Context, userID, cardID, familiarity int32) (*store.VocabularyMembership, error) {
	if familiarity < store.MinFamiliarity || familiarity > store.MaxFamiliarity {
		return nil, errors.Newf(errors.ErrCodeInvalidArgument, "familiarity must be between %d and %d, got %d", store.MinFamiliarity, store.MaxFamiliarity, familiarity)
	}

	membership, err := s.store.GetVocabularyMembership(ctx, &store.FindVocabularyMembership{UserID: &userID, CardID: &cardID})
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, errors.Newf(errors.ErrCodeNotFound, "user %d has no membership for card %d", userID, cardID)
	}
	return s.store.UpdateVocabularyMembership(ctx, &store.UpdateVocabularyMembership{
		ID:          membership.ID,
		Familiarity: &familiarity,
	})
}

// RemoveWord drops the card from the user's vocabulary list. The card
// itself stays for other users.
func (s *Service) RemoveWord(ctx context.Context, userID, cardID int32) error {
	return s.store.DeleteVocabularyMembership(ctx, &store.DeleteVocabularyMembership{
		UserID: userID,
		CardID: cardID,
	})
}

// ListVocabulary returns the user's saved cards with their words.
func (s *Service) ListVocabulary(ctx context.Context, userID int32) ([]*Entry, error) {
	memberships, err := s.store.ListVocabularyMemberships(ctx, &store.FindVocabularyMembership{UserID: &userID})
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(memberships))
	for _, membership := range memberships {
		card, err := s.store.GetContentCard(ctx, &store.FindContentCard{ID: &membership.CardID})
		if err != nil {
			return nil, err
		}
		if card == nil {
			continue
		}
		word, err := s.store.GetWord(ctx, &store.FindWord{ID: &card.WordID})
		if err != nil {
			return nil, err
		}
		entries = append(entries, &Entry{Membership: membership, Card: card, Word: word})
	}
	return entries, nil
}

func (s *Service) logLookup(ctx context.Context, word, interestLabel string, cacheHit bool) {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info("word lookup resolved",
			slog.String(observability.LogFieldWord, word),
			slog.String(observability.LogFieldInterest, interestLabel),
			slog.Bool(observability.LogFieldCacheHit, cacheHit),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
	}
}

func (s *Service) logGenerationFailure(ctx context.Context, word string, err error) {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Error("content generation failed, using fallback card", err,
			slog.String(observability.LogFieldWord, word),
			slog.String(observability.LogFieldErrorCode, string(errors.ErrCodeGenerationFailed)),
		)
	}
}
