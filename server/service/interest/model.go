package interest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"
)

// DefaultDecayRate is the per-day geometric decay applied to a score
// that has not been touched.
const DefaultDecayRate = 0.95

// Score tracks one interest label's attention level for a user. Scores
// live in [0, 1]; neglect decays them geometrically per day but never
// removes the label.
type Score struct {
	Label            string  `json:"label"`
	Value            float64 `json:"score"`
	LastUpdated      string  `json:"last_updated"` // RFC 3339
	InteractionCount int32   `json:"interaction_count"`
	DecayRate        float64 `json:"decay_rate"`
}

// NewScore builds a validated Score. Value must be in [0, 1] and
// decayRate in (0, 1].
func NewScore(label string, value float64, lastUpdated time.Time, decayRate float64) (*Score, error) {
	if value < 0.0 || value > 1.0 {
		return nil, errors.Errorf("score must be between 0.0 and 1.0, got %v", value)
	}
	if decayRate <= 0.0 || decayRate > 1.0 {
		return nil, errors.Errorf("decay rate must be between 0.0 and 1.0, got %v", decayRate)
	}
	return &Score{
		Label:       label,
		Value:       value,
		LastUpdated: lastUpdated.UTC().Format(time.RFC3339Nano),
		DecayRate:   decayRate,
	}, nil
}

// lastUpdatedTime parses the stored timestamp, falling back to now when
// it is missing or unparseable.
func (s *Score) lastUpdatedTime(now time.Time) time.Time {
	if s.LastUpdated == "" {
		return now
	}
	parsed, err := time.Parse(time.RFC3339Nano, s.LastUpdated)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s.LastUpdated)
	}
	if err != nil {
		return now
	}
	return parsed
}

// DecayedScore returns the value adjusted for time elapsed since the
// last update: value × decayRate^(fractional days). Zero or negative
// elapsed time leaves the value unchanged; clock skew must never
// increase a score. The result is floored at 0.
func (s *Score) DecayedScore(now time.Time) float64 {
	days := now.Sub(s.lastUpdatedTime(now)).Seconds() / 86400.0
	if days <= 0 {
		return s.Value
	}
	decayed := s.Value * math.Pow(s.DecayRate, days)
	return math.Max(0.0, decayed)
}

// Graph maps interest labels to their scores. It is the in-memory form
// of one user's serialized interest document.
type Graph map[string]*Score

// decodeGraph reconstructs a Graph from its serialized form. A corrupt
// document degrades to an empty graph; the caller decides whether to log.
func decodeGraph(payload string) (Graph, bool) {
	if payload == "" {
		return Graph{}, true
	}
	graph := Graph{}
	if err := json.Unmarshal([]byte(payload), &graph); err != nil {
		return Graph{}, false
	}
	for label, score := range graph {
		if score == nil {
			delete(graph, label)
			continue
		}
		if score.Label == "" {
			score.Label = label
		}
		if score.DecayRate <= 0.0 || score.DecayRate > 1.0 {
			score.DecayRate = DefaultDecayRate
		}
	}
	return graph, true
}

// encodeGraph serializes the graph for storage.
func encodeGraph(graph Graph) (string, error) {
	payload, err := json.Marshal(graph)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize interest graph")
	}
	return string(payload), nil
}
