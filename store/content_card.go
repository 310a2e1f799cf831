package store

import "encoding/json"

// ContentCard stores one generated explanation with meta-tags for reuse.
// Multiple users can reference the same card. At most one card exists per
// (word, target language, CEFR level, interest context, tone style) key,
// and a card's content is never mutated after creation.
type ContentCard struct {
	ID     int32
	UID    string
	WordID int32

	Definition   string
	Conversation string
	// Examples is a JSON-encoded array of usage sentences.
	Examples string

	// Reuse meta-tags (the index).
	TargetLanguage  string
	TargetCEFR      string
	InterestContext string
	ToneStyle       string

	CreatedTs int64
}

// ContentKey is the composite reuse key of a content card.
type ContentKey struct {
	WordID          int32
	TargetLanguage  string
	TargetCEFR      string
	InterestContext string
	ToneStyle       string
}

// Key returns the card's composite reuse key.
func (c *ContentCard) Key() ContentKey {
	return ContentKey{
		WordID:          c.WordID,
		TargetLanguage:  c.TargetLanguage,
		TargetCEFR:      c.TargetCEFR,
		InterestContext: c.InterestContext,
		ToneStyle:       c.ToneStyle,
	}
}

// ExampleList parses the serialized examples. Malformed data degrades to
// an empty list rather than failing the read.
func (c *ContentCard) ExampleList() []string {
	if c.Examples == "" {
		return []string{}
	}
	var examples []string
	if err := json.Unmarshal([]byte(c.Examples), &examples); err != nil {
		return []string{}
	}
	return examples
}

// SetExampleList serializes examples onto the card.
func (c *ContentCard) SetExampleList(examples []string) {
	if len(examples) == 0 {
		c.Examples = "[]"
		return
	}
	raw, err := json.Marshal(examples)
	if err != nil {
		c.Examples = "[]"
		return
	}
	c.Examples = string(raw)
}

// FindContentCard specifies the conditions for finding content cards.
// Matching on Key is exact-equality on all five fields.
type FindContentCard struct {
	ID     *int32
	WordID *int32
	Key    *ContentKey
}
