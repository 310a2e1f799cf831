package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExampleList(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		card := &ContentCard{}
		card.SetExampleList([]string{"Je mange.", "Tu manges.", "Il mange."})
		require.Equal(t, []string{"Je mange.", "Tu manges.", "Il mange."}, card.ExampleList())
	})

	t.Run("empty list serializes to empty array", func(t *testing.T) {
		card := &ContentCard{}
		card.SetExampleList(nil)
		require.Equal(t, "[]", card.Examples)
		require.Empty(t, card.ExampleList())
	})

	t.Run("malformed data degrades to empty list", func(t *testing.T) {
		for _, raw := range []string{"", "not json", `{"a": 1}`, "[1, 2, 3]"} {
			card := &ContentCard{Examples: raw}
			require.Equal(t, []string{}, card.ExampleList(), "examples %q", raw)
		}
	})
}

func TestContentKey(t *testing.T) {
	card := &ContentCard{
		WordID:          7,
		TargetLanguage:  "fr",
		TargetCEFR:      "B1",
		InterestContext: "Hockey",
		ToneStyle:       "Neutral",
	}
	require.Equal(t, ContentKey{
		WordID:          7,
		TargetLanguage:  "fr",
		TargetCEFR:      "B1",
		InterestContext: "Hockey",
		ToneStyle:       "Neutral",
	}, card.Key())
}

func TestIsValidCEFRLevel(t *testing.T) {
	for _, level := range CEFRLevels {
		require.True(t, IsValidCEFRLevel(level))
	}
	for _, level := range []string{"", "a1", "Z9", "B3"} {
		require.False(t, IsValidCEFRLevel(level))
	}
}
