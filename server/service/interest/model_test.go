package interest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewScoreValidation(t *testing.T) {
	now := time.Now()

	t.Run("valid bounds accepted", func(t *testing.T) {
		for _, value := range []float64{0.0, 0.5, 1.0} {
			score, err := NewScore("Hockey", value, now, DefaultDecayRate)
			require.NoError(t, err)
			require.Equal(t, value, score.Value)
		}
	})

	t.Run("score out of range rejected", func(t *testing.T) {
		_, err := NewScore("Hockey", -0.01, now, DefaultDecayRate)
		require.Error(t, err)
		_, err = NewScore("Hockey", 1.01, now, DefaultDecayRate)
		require.Error(t, err)
	})

	t.Run("decay rate out of range rejected", func(t *testing.T) {
		_, err := NewScore("Hockey", 0.5, now, 0.0)
		require.Error(t, err)
		_, err = NewScore("Hockey", 0.5, now, 1.01)
		require.Error(t, err)
	})

	t.Run("decay rate of exactly one accepted", func(t *testing.T) {
		_, err := NewScore("Hockey", 0.5, now, 1.0)
		require.NoError(t, err)
	})
}

func TestDecayedScore(t *testing.T) {
	now := time.Now()

	t.Run("identity at last update", func(t *testing.T) {
		for _, value := range []float64{0.0, 0.3, 1.0} {
			score, err := NewScore("Hockey", value, now, DefaultDecayRate)
			require.NoError(t, err)
			require.Equal(t, value, score.DecayedScore(now))
		}
	})

	t.Run("negative elapsed never increases score", func(t *testing.T) {
		score, err := NewScore("Hockey", 0.8, now, DefaultDecayRate)
		require.NoError(t, err)
		require.Equal(t, 0.8, score.DecayedScore(now.Add(-time.Hour)))
	})

	t.Run("one day applies the rate once", func(t *testing.T) {
		score, err := NewScore("Hockey", 1.0, now, 0.95)
		require.NoError(t, err)
		require.InDelta(t, 0.95, score.DecayedScore(now.Add(24*time.Hour)), 1e-9)
	})

	t.Run("monotonically non-increasing", func(t *testing.T) {
		score, err := NewScore("Hockey", 0.9, now, 0.9)
		require.NoError(t, err)
		previous := score.Value
		for hours := 1; hours <= 96; hours *= 2 {
			decayed := score.DecayedScore(now.Add(time.Duration(hours) * time.Hour))
			require.LessOrEqual(t, decayed, previous)
			require.GreaterOrEqual(t, decayed, 0.0)
			previous = decayed
		}
	})

	t.Run("rate of one never decays", func(t *testing.T) {
		score, err := NewScore("Hockey", 0.7, now, 1.0)
		require.NoError(t, err)
		require.InDelta(t, 0.7, score.DecayedScore(now.Add(30*24*time.Hour)), 1e-9)
	})
}

func TestGraphCodec(t *testing.T) {
	now := time.Now()

	t.Run("round trip", func(t *testing.T) {
		score, err := NewScore("Hockey", 0.6, now, DefaultDecayRate)
		require.NoError(t, err)
		score.InteractionCount = 4

		payload, err := encodeGraph(Graph{"Hockey": score})
		require.NoError(t, err)

		decoded, ok := decodeGraph(payload)
		require.True(t, ok)
		require.Len(t, decoded, 1)
		require.Equal(t, 0.6, decoded["Hockey"].Value)
		require.Equal(t, int32(4), decoded["Hockey"].InteractionCount)
		require.Equal(t, DefaultDecayRate, decoded["Hockey"].DecayRate)
	})

	t.Run("empty payload decodes to empty graph", func(t *testing.T) {
		graph, ok := decodeGraph("")
		require.True(t, ok)
		require.Empty(t, graph)
	})

	t.Run("corrupt payload degrades to empty graph", func(t *testing.T) {
		graph, ok := decodeGraph("{not json")
		require.False(t, ok)
		require.Empty(t, graph)
	})

	t.Run("missing last updated falls back to now", func(t *testing.T) {
		graph, ok := decodeGraph(`{"Hockey": {"label": "Hockey", "score": 0.5, "decay_rate": 0.95}}`)
		require.True(t, ok)
		// With the fallback in effect no time has elapsed, so no decay.
		require.Equal(t, 0.5, graph["Hockey"].DecayedScore(time.Now()))
	})

	t.Run("invalid decay rate replaced with default", func(t *testing.T) {
		graph, ok := decodeGraph(`{"Hockey": {"label": "Hockey", "score": 0.5, "decay_rate": 7}}`)
		require.True(t, ok)
		require.Equal(t, DefaultDecayRate, graph["Hockey"].DecayRate)
	})
}
