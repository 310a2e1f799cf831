package interest

import (
	"context"
	"log/slog"
	"sort"
	"time"

	goerrors "errors"

	"github.com/wordfolio/wordfolio/server/internal/errors"
	"github.com/wordfolio/wordfolio/internal/observability"
	"github.com/wordfolio/wordfolio/store"
)

// DefaultLabel is returned when the user has no recorded interests.
const DefaultLabel = "General"

// casRetries bounds how many times a conflicting write is retried before
// the interaction is reported as failed.
const casRetries = 5

// actionWeights maps interaction kinds to the attention weight they add.
var actionWeights = map[string]float64{
	"click":            0.1,
	"view_50_percent":  0.3,
	"view_100_percent": 0.5,
	"share":            0.8,
	"explicit_tag":     1.0,
}

// ActionTypes lists the accepted interaction kinds, sorted.
func ActionTypes() []string {
	types := make([]string, 0, len(actionWeights))
	for action := range actionWeights {
		types = append(types, action)
	}
	sort.Strings(types)
	return types
}

// Service maintains per-user weighted interest graphs. Each interaction
// is one read-modify-write over the whole serialized graph; a version
// stamp turns the write into a compare-and-swap so concurrent
// interactions retry instead of losing updates.
type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// RecordInteraction applies one interaction to the user's graph: lazy
// decay of the touched label, weight addition, then a clamp at 1.0.
// Unknown action types are rejected without touching the graph.
func (s *Service) RecordInteraction(ctx context.Context, userID int32, label string, actionType string) error {
	weight, ok := actionWeights[actionType]
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidArgument, "invalid action type %q, must be one of %v", actionType, ActionTypes())
	}
	if label == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "interest label must not be empty")
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		record, err := s.store.GetInterestGraph(ctx, &store.FindInterestGraph{UserID: &userID})
		if err != nil {
			return err
		}

		var version int32
		var payload string
		if record != nil {
			version = record.Version
			payload = record.Payload
		}

		graph, ok := decodeGraph(payload)
		if !ok {
			s.warnMalformed(ctx)
		}

		now := s.now()
		score := graph[label]
		if score != nil {
			score.Value = score.DecayedScore(now)
		} else {
			score, err = NewScore(label, 0.0, now, DefaultDecayRate)
			if err != nil {
				return err
			}
			graph[label] = score
		}

		score.Value += weight
		if score.Value > 1.0 {
			score.Value = 1.0
		}
		score.LastUpdated = now.UTC().Format(time.RFC3339Nano)
		score.InteractionCount++

		updated, err := encodeGraph(graph)
		if err != nil {
			return err
		}

		_, err = s.store.UpdateInterestGraph(ctx, &store.UpdateInterestGraph{
			UserID:          userID,
			Payload:         updated,
			ExpectedVersion: version,
		})
		if err == nil {
			return nil
		}
		if !goerrors.Is(err, store.ErrVersionConflict) && !goerrors.Is(err, store.ErrAlreadyExists) {
			return err
		}
		// Someone else advanced the graph; reread and reapply.
	}
	return errors.Newf(errors.ErrCodeTimeout, "interest graph for user %d kept changing, giving up after %d attempts", userID, casRetries)
}

// TopInterest returns the label with the highest stored score, or
// DefaultLabel when the graph is empty. Ranking uses the raw stored
// score rather than the decayed one: decay is applied lazily on write,
// and a read must not prefer a rarely-touched label merely because its
// stale score has not been decayed yet either. Ties break
// alphabetically for stable output.
func (s *Service) TopInterest(ctx context.Context, userID int32) (string, error) {
	graph, err := s.Graph(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(graph) == 0 {
		return DefaultLabel, nil
	}

	labels := make([]string, 0, len(graph))
	for label := range graph {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	top := labels[0]
	for _, label := range labels[1:] {
		if graph[label].Value > graph[top].Value {
			top = label
		}
	}
	return top, nil
}

// Graph returns the user's decoded interest graph. A missing record or
// corrupt payload yields an empty graph.
func (s *Service) Graph(ctx context.Context, userID int32) (Graph, error) {
	record, err := s.store.GetInterestGraph(ctx, &store.FindInterestGraph{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return Graph{}, nil
	}
	graph, ok := decodeGraph(record.Payload)
	if !ok {
		s.warnMalformed(ctx)
	}
	return graph, nil
}

func (s *Service) warnMalformed(ctx context.Context) {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Warn("interest graph payload is malformed, treating as empty",
			slog.String(observability.LogFieldErrorCode, string(errors.ErrCodeMalformedData)),
		)
	}
}
