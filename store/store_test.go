package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/store"
	"github.com/wordfolio/wordfolio/store/teststore"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(teststore.NewDriver(), &profile.Profile{})
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestContentCardCaching(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	word, err := st.CreateWord(ctx, &store.Word{UID: "w1", Text: "manger", Language: "fr"})
	require.NoError(t, err)

	card, err := st.CreateContentCard(ctx, &store.ContentCard{
		UID:             "c1",
		WordID:          word.ID,
		Definition:      "To eat.",
		Examples:        "[]",
		TargetLanguage:  "fr",
		TargetCEFR:      "B1",
		InterestContext: "Hockey",
		ToneStyle:       "Neutral",
	})
	require.NoError(t, err)

	key := card.Key()
	cached, err := st.GetContentCard(ctx, &store.FindContentCard{Key: &key})
	require.NoError(t, err)
	require.Equal(t, card.ID, cached.ID)

	// Deleting the word cascades away the card and clears the cache.
	require.NoError(t, st.DeleteWord(ctx, &store.DeleteWord{ID: word.ID}))
	gone, err := st.GetContentCard(ctx, &store.FindContentCard{Key: &key})
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestContentCardUniqueKey(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	word, err := st.CreateWord(ctx, &store.Word{UID: "w1", Text: "manger", Language: "fr"})
	require.NoError(t, err)

	create := &store.ContentCard{
		UID:             "c1",
		WordID:          word.ID,
		Examples:        "[]",
		TargetLanguage:  "fr",
		TargetCEFR:      "B1",
		InterestContext: "Hockey",
		ToneStyle:       "Neutral",
	}
	_, err = st.CreateContentCard(ctx, create)
	require.NoError(t, err)

	duplicate := *create
	duplicate.UID = "c2"
	_, err = st.CreateContentCard(ctx, &duplicate)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// A different tone is a different key.
	other := *create
	other.UID = "c3"
	other.ToneStyle = "Academic"
	_, err = st.CreateContentCard(ctx, &other)
	require.NoError(t, err)
}

func TestWordUniqueTextLanguage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.CreateWord(ctx, &store.Word{UID: "w1", Text: "manger", Language: "fr"})
	require.NoError(t, err)
	_, err = st.CreateWord(ctx, &store.Word{UID: "w2", Text: "manger", Language: "fr"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestInterestGraphCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Version 0 inserts.
	record, err := st.UpdateInterestGraph(ctx, &store.UpdateInterestGraph{UserID: 1, Payload: "{}", ExpectedVersion: 0})
	require.NoError(t, err)
	require.Equal(t, int32(1), record.Version)

	// Matching version advances.
	record, err = st.UpdateInterestGraph(ctx, &store.UpdateInterestGraph{UserID: 1, Payload: `{"a":{}}`, ExpectedVersion: 1})
	require.NoError(t, err)
	require.Equal(t, int32(2), record.Version)

	// Stale version conflicts.
	_, err = st.UpdateInterestGraph(ctx, &store.UpdateInterestGraph{UserID: 1, Payload: "{}", ExpectedVersion: 1})
	require.ErrorIs(t, err, store.ErrVersionConflict)
}

func TestUserProfileCaching(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID := int32(1)
	_, err := st.UpsertUserProfile(ctx, &store.UpsertUserProfile{UserID: userID, Level: "B1"})
	require.NoError(t, err)

	userProfile, err := st.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	require.NoError(t, err)
	require.Equal(t, "B1", userProfile.Level)

	// Upsert refreshes the cached copy.
	_, err = st.UpsertUserProfile(ctx, &store.UpsertUserProfile{UserID: userID, Level: "C1"})
	require.NoError(t, err)
	userProfile, err = st.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	require.NoError(t, err)
	require.Equal(t, "C1", userProfile.Level)

	require.NoError(t, st.DeleteUserProfile(ctx, &store.DeleteUserProfile{UserID: userID}))
	userProfile, err = st.GetUserProfile(ctx, &store.FindUserProfile{UserID: &userID})
	require.NoError(t, err)
	require.Nil(t, userProfile)
}
