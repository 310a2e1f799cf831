package ai

import (
	"fmt"
	"strings"
)

var languageNames = map[string]string{
	"fr": "French",
	"en": "English",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
}

// languageName returns a human-readable language name for prompts.
func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// toneInstruction maps a tone style to a prompt register.
func toneInstruction(tone string) string {
	if tone == "Academic" {
		return "Formal, precise, academic"
	}
	return "Humorous, witty, engaging"
}

// buildPrompt renders the personalized tutor prompt. The provider is asked
// for strict JSON matching the new schema; normalizeResponse still accepts
// legacy field names from older prompt revisions.
func buildPrompt(word string, pctx PersonalizationContext) string {
	ageGroup := pctx.AgeGroup
	if ageGroup == "" {
		ageGroup = "adult"
	}
	level := pctx.Level
	if level == "" {
		level = "B1"
	}
	interests := pctx.Interests
	if len(interests) == 0 {
		interests = []string{"General Knowledge", "Daily Life"}
	}
	targetLang := languageName(pctx.TargetLanguage)
	nativeLang := languageName(pctx.NativeLanguage)
	interestsStr := strings.Join(interests, ", ")

	return fmt.Sprintf(`You are a highly personalized %[1]s language tutor for a %[2]s student.
Level: %[3]s. Interests: [%[4]s].

Target Word: "%[5]s"

**Instructions:**
1. **Context Selection:** Select the ONE interest from [%[4]s] that fits "%[5]s" most naturally. If none fit perfectly, choose the closest match.

2. **Content Generation:**
   - **Conversation (conversation_target):** Write 4-6 sentences in %[1]s at %[3]s level, using the **selected interest** as the setting/context. Make it engaging and natural.
   - **Explanation (explanation_native):** Explain "%[5]s" using an analogy or example from the **selected interest** context. Write in %[6]s, but make it relatable to the chosen interest.
   - **Examples (usages_target):** Provide exactly 3 different %[1]s example sentences showing different usage contexts. Keep them at %[3]s level.
   - **Grammar Info:** Identify part_of_speech, base_form, and gender (if applicable for %[1]s).

3. **Tone:** %[7]s

Return ONLY valid JSON. No markdown. No extra text.

Schema:
{
  "input_word": "%[5]s",
  "target_language": "%[8]s",
  "native_language": "%[9]s",
  "selected_interest": "The chosen interest from the list",
  "part_of_speech": "verb" | "noun" | "adjective" | "adverb" | "other",
  "base_form": "string (infinitive for verbs, singular for nouns, masculine singular for adjectives)",
  "gender": "m" | "f" | null,
  "difficulty_system": "CEFR",
  "difficulty_level": "A1" | "A2" | "B1" | "B2" | "C1" | "C2",
  "conversation_target": "4-6 sentences in %[1]s using the selected interest context",
  "explanation_native": "%[6]s explanation using analogy from selected interest",
  "usages_target": ["sentence 1", "sentence 2", "sentence 3"]
}`,
		targetLang, ageGroup, level, interestsStr, word, nativeLang,
		toneInstruction(pctx.Tone), pctx.TargetLanguage, pctx.NativeLanguage)
}
