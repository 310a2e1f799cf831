package interest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wordfolio/wordfolio/internal/profile"
	"github.com/wordfolio/wordfolio/server/internal/errors"
	"github.com/wordfolio/wordfolio/store"
	"github.com/wordfolio/wordfolio/store/teststore"
)

func newTestService(t *testing.T) (*Service, *teststore.Driver) {
	t.Helper()
	driver := teststore.NewDriver()
	st := store.New(driver, &profile.Profile{})
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st), driver
}

func TestRecordInteraction(t *testing.T) {
	ctx := context.Background()

	t.Run("first interaction seeds the label", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "view_50_percent"))

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		require.Len(t, graph, 1)
		require.InDelta(t, 0.3, graph["Hockey"].Value, 1e-9)
		require.Equal(t, int32(1), graph["Hockey"].InteractionCount)
	})

	t.Run("weights accumulate", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "click"))
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "view_100_percent"))

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		require.InDelta(t, 0.6, graph["Hockey"].Value, 1e-6)
		require.Equal(t, int32(2), graph["Hockey"].InteractionCount)
	})

	t.Run("score saturates at one", func(t *testing.T) {
		svc, _ := newTestService(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "share"))
		}

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 1.0, graph["Hockey"].Value)
	})

	t.Run("unknown action rejected without touching graph", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.RecordInteraction(ctx, 1, "Hockey", "laugh")
		require.Error(t, err)
		require.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		require.Empty(t, graph)
	})

	t.Run("empty label rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.RecordInteraction(ctx, 1, "", "click")
		require.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	})

	t.Run("decay applies before the new weight", func(t *testing.T) {
		svc, _ := newTestService(t)
		base := time.Now()
		svc.now = func() time.Time { return base }
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "share"))

		// Ten days later the 0.8 has decayed by 0.95^10 before the click lands.
		svc.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "click"))

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		expected := 0.8*0.5987369392383787 + 0.1 // 0.95^10
		require.InDelta(t, expected, graph["Hockey"].Value, 1e-6)
	})

	t.Run("labels are independent per user", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "share"))
		require.NoError(t, svc.RecordInteraction(ctx, 2, "Cooking", "click"))

		graph1, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		graph2, err := svc.Graph(ctx, 2)
		require.NoError(t, err)
		require.Len(t, graph1, 1)
		require.Len(t, graph2, 1)
		require.Contains(t, graph1, "Hockey")
		require.Contains(t, graph2, "Cooking")
	})

	t.Run("corrupt payload degrades to empty graph", func(t *testing.T) {
		svc, driver := newTestService(t)
		driver.SeedInterestGraph(1, "{broken")
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "explicit_tag"))

		graph, err := svc.Graph(ctx, 1)
		require.NoError(t, err)
		require.Len(t, graph, 1)
		require.Equal(t, 1.0, graph["Hockey"].Value)
	})
}

func TestRecordInteractionConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	// Every failed compare-and-swap means another writer succeeded, so
	// with 5 writers nobody can conflict more than 4 times.
	done := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			done <- svc.RecordInteraction(ctx, 1, "Hockey", "click")
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, <-done)
	}

	graph, err := svc.Graph(ctx, 1)
	require.NoError(t, err)
	// No interaction may be lost to a concurrent writer.
	require.Equal(t, int32(5), graph["Hockey"].InteractionCount)
	require.InDelta(t, 0.5, graph["Hockey"].Value, 1e-6)
}

func TestTopInterest(t *testing.T) {
	ctx := context.Background()

	t.Run("empty graph yields the default label", func(t *testing.T) {
		svc, _ := newTestService(t)
		top, err := svc.TopInterest(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, DefaultLabel, top)
	})

	t.Run("highest stored score wins", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Hockey", "share"))
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Cooking", "click"))

		top, err := svc.TopInterest(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "Hockey", top)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		svc, _ := newTestService(t)
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Skating", "click"))
		require.NoError(t, svc.RecordInteraction(ctx, 1, "Baking", "click"))

		top, err := svc.TopInterest(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "Baking", top)
	})

	t.Run("corrupt payload yields the default label", func(t *testing.T) {
		svc, driver := newTestService(t)
		driver.SeedInterestGraph(1, "not json at all")
		top, err := svc.TopInterest(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, DefaultLabel, top)
	})
}
