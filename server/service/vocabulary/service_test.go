package vocabulary

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/server/ai"
	"github.com/wordfolio/wordfolio/server/internal/errors"
	"github.com/wordfolio/wordfolio/server/service/interest"
	"github.com/wordfolio/wordfolio/store"
	"github.com/wordfolio/wordfolio/store/teststore"
)

type fixture struct {
	service   *Service
	store     *store.Store
	interests *interest.Service
	generator *ai.MockGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testProfile := &profile.Profile{
		DefaultTargetLanguage: "fr",
		DefaultNativeLanguage: "en",
		DefaultLevel:          "A1",
		DefaultInterest:       "General",
		DefaultTone:           "Neutral",
	}
	st := store.New(teststore.NewDriver(), testProfile)
	t.Cleanup(func() { _ = st.Close() })

	interests := interest.NewService(st)
	generator := ai.NewMockGenerator()
	return &fixture{
		service:   NewService(st, testProfile, generator, interests),
		store:     st,
		interests: interests,
		generator: generator,
	}
}

// seedUser installs a profile and a dominant interest for the user.
func (f *fixture) seedUser(t *testing.T, userID int32, level, interestLabel string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.UpsertUserProfile(ctx, &store.UpsertUserProfile{
		UserID:         userID,
		Level:          level,
		TargetLanguage: "fr",
		NativeLanguage: "en",
	})
	require.NoError(t, err)
	require.NoError(t, f.interests.RecordInteraction(ctx, userID, interestLabel, "explicit_tag"))
}

func TestFetchWordContent(t *testing.T) {
	ctx := context.Background()

	t.Run("miss generates and persists a card", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")

		result, err := f.service.FetchWordContent(ctx, 1, "  Manger ")
		require.NoError(t, err)
		require.False(t, result.CacheHit)

		card := result.Card
		require.Equal(t, "fr", card.TargetLanguage)
		require.Equal(t, "B1", card.TargetCEFR)
		require.Equal(t, "Hockey", card.InterestContext)
		require.Equal(t, "Neutral", card.ToneStyle)
		require.Equal(t, "Mock definition for manger", card.Definition)
		require.Len(t, card.ExampleList(), 3)

		word, err := f.store.GetWord(ctx, &store.FindWord{ID: &card.WordID})
		require.NoError(t, err)
		require.Equal(t, "manger", word.Text)
		require.Equal(t, "fr", word.Language)

		require.NotNil(t, result.Membership)
		require.Equal(t, store.MinFamiliarity, result.Membership.Familiarity)
		require.Equal(t, int64(1), f.generator.Calls())
	})

	t.Run("second lookup reuses the card", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")

		first, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)
		second, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)

		require.True(t, second.CacheHit)
		require.Equal(t, first.Card.ID, second.Card.ID)
		require.Equal(t, first.Membership.ID, second.Membership.ID)
		require.Equal(t, int64(1), f.generator.Calls())
	})

	t.Run("gateway failure yields a persisted fallback card", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		f.generator.Err = context.DeadlineExceeded

		result, err := f.service.FetchWordContent(ctx, 1, "boire")
		require.NoError(t, err)

		card := result.Card
		require.Equal(t, "Definition for boire", card.Definition)
		require.Empty(t, card.ExampleList())
		require.Equal(t, "B1", card.TargetCEFR)
		require.Equal(t, "Hockey", card.InterestContext)
		require.NotNil(t, result.Membership)

		// The fallback is cached like any other card.
		again, err := f.service.FetchWordContent(ctx, 1, "boire")
		require.NoError(t, err)
		require.True(t, again.CacheHit)
		require.Equal(t, card.ID, again.Card.ID)
	})

	t.Run("two users share one card with separate memberships", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		f.seedUser(t, 2, "B1", "Hockey")

		first, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)
		second, err := f.service.FetchWordContent(ctx, 2, "manger")
		require.NoError(t, err)

		require.Equal(t, first.Card.ID, second.Card.ID)
		require.NotEqual(t, first.Membership.ID, second.Membership.ID)

		cards, err := f.store.ListContentCards(ctx, &store.FindContentCard{WordID: &first.Card.WordID})
		require.NoError(t, err)
		require.Len(t, cards, 1)
	})

	t.Run("different levels produce different cards", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		f.seedUser(t, 2, "C2", "Hockey")
		f.generator.Respond("manger", &ai.WordContent{Definition: "x", Usages: []string{"a", "b", "c"}})

		first, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)
		second, err := f.service.FetchWordContent(ctx, 2, "manger")
		require.NoError(t, err)
		require.NotEqual(t, first.Card.ID, second.Card.ID)
	})

	t.Run("empty word rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.FetchWordContent(ctx, 1, "   ")
		require.Error(t, err)
		require.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	})

	t.Run("anonymous lookup resolves defaults without membership", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.service.FetchWordContent(ctx, AnonymousUserID, "manger")
		require.NoError(t, err)
		require.Nil(t, result.Membership)
		require.Equal(t, "A1", result.Card.TargetCEFR)
		require.Equal(t, "General", result.Card.InterestContext)

		memberships, err := f.store.ListVocabularyMemberships(ctx, &store.FindVocabularyMembership{})
		require.NoError(t, err)
		require.Empty(t, memberships)
	})

	t.Run("word language corrected when profile target drifts", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		existing, err := f.store.CreateWord(ctx, &store.Word{UID: "w1", Text: "manger", Language: "es"})
		require.NoError(t, err)

		result, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)
		require.Equal(t, existing.ID, result.Card.WordID)

		word, err := f.store.GetWord(ctx, &store.FindWord{ID: &existing.ID})
		require.NoError(t, err)
		require.Equal(t, "fr", word.Language)
	})

	t.Run("gateway resolved level overrides the requested one when valid", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		f.generator.Respond("manger", &ai.WordContent{
			Definition:     "To eat.",
			TargetLanguage: "fr",
			Level:          "A2",
			Usages:         []string{"a", "b", "c"},
		})

		result, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)
		require.Equal(t, "A2", result.Card.TargetCEFR)
	})
}

func TestFetchWordContentConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, 1, "B1", "Hockey")

	release := make(chan struct{})
	f.generator.Delay = func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	const lookups = 8
	results := make([]*Result, lookups)
	errs := make([]error, lookups)
	var started, finished sync.WaitGroup
	started.Add(lookups)
	finished.Add(lookups)
	for i := 0; i < lookups; i++ {
		go func(i int) {
			started.Done()
			defer finished.Done()
			results[i], errs[i] = f.service.FetchWordContent(ctx, 1, "manger")
		}(i)
	}
	started.Wait()
	close(release)
	finished.Wait()

	var cardID int32
	for i := 0; i < lookups; i++ {
		require.NoError(t, errs[i])
		if cardID == 0 {
			cardID = results[i].Card.ID
		}
		require.Equal(t, cardID, results[i].Card.ID)
	}

	cards, err := f.store.ListContentCards(ctx, &store.FindContentCard{WordID: &results[0].Card.WordID})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	memberships, err := f.store.ListVocabularyMemberships(ctx, &store.FindVocabularyMembership{})
	require.NoError(t, err)
	require.Len(t, memberships, 1)
}

func TestSetFamiliarity(t *testing.T) {
	ctx := context.Background()

	t.Run("valid rating updates", func(t *testing.T) {
		f := newFixture(t)
		f.seedUser(t, 1, "B1", "Hockey")
		result, err := f.service.FetchWordContent(ctx, 1, "manger")
		require.NoError(t, err)

		membership, err := f.service.SetFamiliarity(ctx, 1, result.Card.ID, 4)
		require.NoError(t, err)
		require.Equal(t, int32(4), membership.Familiarity)
	})

	t.Run("out of range rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.SetFamiliarity(ctx, 1, 1, 0)
		require.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
		_, err = f.service.SetFamiliarity(ctx, 1, 1, 6)
		require.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	})

	t.Run("missing membership not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.SetFamiliarity(ctx, 1, 42, 3)
		require.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})
}

func TestRemoveWordAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, 1, "B1", "Hockey")

	first, err := f.service.FetchWordContent(ctx, 1, "manger")
	require.NoError(t, err)
	_, err = f.service.FetchWordContent(ctx, 1, "boire")
	require.NoError(t, err)

	entries, err := f.service.ListVocabulary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Card)
	require.NotNil(t, entries[0].Word)

	require.NoError(t, f.service.RemoveWord(ctx, 1, first.Card.ID))

	entries, err = f.service.ListVocabulary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "boire", entries[0].Word.Text)

	// The shared card itself survives removal from one user's list.
	card, err := f.store.GetContentCard(ctx, &store.FindContentCard{ID: &first.Card.ID})
	require.NoError(t, err)
	require.NotNil(t, card)
}
