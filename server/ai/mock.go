package ai

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockGenerator is an in-memory Generator for tests. Responses are keyed
// by word; unknown words fall back to Err or a synthesized result.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]*WordContent

	// Err, when set, is returned for every word without a canned response.
	Err error

	// Delay, when set, is awaited (or the context cancelled) before replying.
	Delay func(ctx context.Context) error

	calls int64
}

var _ Generator = (*MockGenerator)(nil)

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{responses: map[string]*WordContent{}}
}

// Respond registers a canned result for word.
func (m *MockGenerator) Respond(word string, content *WordContent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[word] = content
}

// Calls reports how many times Generate has been invoked.
func (m *MockGenerator) Calls() int64 {
	return atomic.LoadInt64(&m.calls)
}

func (m *MockGenerator) Generate(ctx context.Context, word string, pctx PersonalizationContext) (*WordContent, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.Delay != nil {
		if err := m.Delay(ctx); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	content, ok := m.responses[word]
	m.mu.Unlock()
	if ok {
		copied := *content
		return &copied, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}

	interest := "General"
	if len(pctx.Interests) > 0 {
		interest = pctx.Interests[0]
	}
	return &WordContent{
		InputWord:        word,
		TargetLanguage:   pctx.TargetLanguage,
		NativeLanguage:   pctx.NativeLanguage,
		SelectedInterest: interest,
		Level:            pctx.Level,
		Definition:       "Mock definition for " + word,
		Conversation:     "A: " + word + "? B: " + word + "!",
		Usages:           []string{word + " one", word + " two", word + " three"},
	}, nil
}
