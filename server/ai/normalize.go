package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/wordfolio/wordfolio/store"
)

// usageCount is the fixed number of usage examples on a card.
const usageCount = 3

// rawResponse accepts both the current schema and the legacy field names
// some providers still emit. normalizeResponse folds everything into the
// canonical WordContent; nothing outside this file sees legacy names.
type rawResponse struct {
	InputWord        string   `json:"input_word"`
	TargetLanguage   string   `json:"target_language"`
	NativeLanguage   string   `json:"native_language"`
	SelectedInterest string   `json:"selected_interest"`
	PartOfSpeech     string   `json:"part_of_speech"`
	BaseForm         string   `json:"base_form"`
	Gender           *string  `json:"gender"`
	DifficultyLevel  string   `json:"difficulty_level"`
	Conversation     string   `json:"conversation_target"`
	Explanation      string   `json:"explanation_native"`
	Usages           []string `json:"usages_target"`

	// Legacy schema.
	LegacyConversation string   `json:"conversation_fr"`
	LegacyExplanation  string   `json:"personalized_explanation"`
	LegacyDefinition   string   `json:"definition_en"`
	LegacyUsages       []string `json:"usages_fr"`
	LegacyLevel        string   `json:"cefr_level"`
	LegacyLanguage     string   `json:"language"`
}

var (
	fenceRe         = regexp.MustCompile("```(?:json)?\\s*")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON strips markdown fences and narrows text to the outermost
// JSON object boundaries.
func extractJSON(text string) string {
	text = fenceRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}
	return text
}

// normalizeResponse parses raw provider output into the canonical shape,
// filling gaps (language, level) from the request context. It fails only
// on responses that carry neither the current nor the legacy schema.
func normalizeResponse(text string, pctx PersonalizationContext) (*WordContent, error) {
	raw := &rawResponse{}
	if err := json.Unmarshal([]byte(text), raw); err != nil {
		repaired := trailingCommaRe.ReplaceAllString(extractJSON(text), "$1")
		if err := json.Unmarshal([]byte(repaired), raw); err != nil {
			return nil, errors.Wrap(err, "failed to parse provider response")
		}
	}

	hasNew := raw.Explanation != ""
	hasLegacy := raw.LegacyExplanation != "" || raw.LegacyDefinition != ""
	if !hasNew && !hasLegacy {
		return nil, errors.New("response carries neither current nor legacy schema")
	}

	content := &WordContent{
		InputWord:        strings.TrimSpace(raw.InputWord),
		SelectedInterest: strings.TrimSpace(raw.SelectedInterest),
		PartOfSpeech:     strings.TrimSpace(raw.PartOfSpeech),
		BaseForm:         strings.TrimSpace(raw.BaseForm),
		Definition:       strings.TrimSpace(raw.Explanation),
		Conversation:     strings.TrimSpace(raw.Conversation),
		Usages:           raw.Usages,
		Level:            strings.ToUpper(strings.TrimSpace(raw.DifficultyLevel)),
		TargetLanguage:   strings.ToLower(strings.TrimSpace(raw.TargetLanguage)),
		NativeLanguage:   strings.ToLower(strings.TrimSpace(raw.NativeLanguage)),
	}

	// Fold the legacy schema into the canonical fields.
	if !hasNew {
		if content.Definition == "" {
			content.Definition = strings.TrimSpace(raw.LegacyExplanation)
		}
		if content.Definition == "" {
			content.Definition = strings.TrimSpace(raw.LegacyDefinition)
		}
		if content.Conversation == "" {
			content.Conversation = strings.TrimSpace(raw.LegacyConversation)
		}
		if len(content.Usages) == 0 {
			content.Usages = raw.LegacyUsages
		}
		if content.Level == "" {
			content.Level = strings.ToUpper(strings.TrimSpace(raw.LegacyLevel))
		}
		if content.TargetLanguage == "" {
			content.TargetLanguage = strings.ToLower(strings.TrimSpace(raw.LegacyLanguage))
		}
	}

	// Fill remaining gaps from the request context.
	if content.TargetLanguage == "" {
		content.TargetLanguage = pctx.TargetLanguage
	}
	if content.NativeLanguage == "" {
		content.NativeLanguage = pctx.NativeLanguage
	}
	// A missing or garbled level must not discard real generated content;
	// the requested level stands in for it.
	if !store.IsValidCEFRLevel(content.Level) {
		content.Level = pctx.Level
	}

	content.Usages = padUsages(content.Usages)

	if raw.Gender != nil {
		gender := strings.ToLower(strings.TrimSpace(*raw.Gender))
		if gender == "m" || gender == "f" {
			content.Gender = gender
		}
	}

	return content, nil
}

// padUsages trims each usage and forces the list to exactly usageCount
// entries, truncating extras and padding shortfalls with empty strings.
func padUsages(usages []string) []string {
	result := make([]string, usageCount)
	for i := 0; i < usageCount && i < len(usages); i++ {
		result[i] = strings.TrimSpace(usages[i])
	}
	return result
}
