package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PrayerPlanRequest is the input to plan generation
type PrayerPlanRequest struct {
	Reason       string `json:"reason" validate:"required,min=10,max=1000"`
	Language     Locale `json:"language" validate:"required,locale"`
	BibleVersion string `json:"bibleVersion,omitempty" validate:"omitempty,bibleversion"`
}

// ActionSteps is the list of practical steps for a day. The model sometimes
// returns the steps as one hyphen- or newline-delimited string; both shapes
// decode into a list.
type ActionSteps []string

// UnmarshalJSON accepts either a JSON array of strings or a single string
func (a *ActionSteps) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = ActionSteps{}
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("actionSteps: %w", err)
		}
		*a = cleanSteps(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("actionSteps must be a string or a list of strings: %w", err)
	}
	*a = SplitActionSteps(s)
	return nil
}

// MarshalJSON always writes a list, never null
func (a ActionSteps) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// SplitActionSteps turns "- pray\n- read" or "- pray - read" into separate
// steps. Text that does not start with a list marker stays one step, dashes
// and all.
func SplitActionSteps(s string) ActionSteps {
	s = strings.TrimSpace(s)
	if s == "" {
		return ActionSteps{}
	}

	var parts []string
	switch {
	case strings.Contains(s, "\n"):
		parts = strings.Split(s, "\n")
	case strings.HasPrefix(s, "-"):
		parts = strings.Split(s, " - ")
	case strings.HasPrefix(s, "•"):
		parts = strings.Split(s, " • ")
	case strings.HasPrefix(s, "*"):
		parts = strings.Split(s, " * ")
	default:
		parts = []string{s}
	}
	return cleanSteps(parts)
}

func cleanSteps(items []string) ActionSteps {
	out := make(ActionSteps, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		item = strings.TrimLeft(item, "-*•")
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// DailyEntry is one day of a prayer plan
type DailyEntry struct {
	Day         string      `json:"day" validate:"required,notblank"`
	VerseRef    string      `json:"verseRef" validate:"required,notblank"`
	VerseText   string      `json:"verseText" validate:"required,notblank"`
	Reflection  string      `json:"reflection" validate:"required,notblank"`
	PrayerText  string      `json:"prayerText" validate:"required,notblank"`
	Tip         string      `json:"tip,omitempty"`
	ActionSteps ActionSteps `json:"actionSteps"`
}

// PrayerPlanResult is a generated plan
type PrayerPlanResult struct {
	ReasonContext       string       `json:"reasonContext" validate:"required,notblank"`
	LanguageContext     string       `json:"languageContext" validate:"required,notblank"`
	BibleVersionContext string       `json:"bibleVersionContext,omitempty"`
	Entries             []DailyEntry `json:"entries" validate:"required,min=1,dive"`
	RecommendedDays     string       `json:"recommendedDays" validate:"required,notblank"`
	DurationSuggestion  string       `json:"durationSuggestion" validate:"required,notblank"`
}

// SavedPlan is a plan kept in the user's plan store
type SavedPlan struct {
	PrayerPlanResult
	ID      string `json:"id"`
	SavedAt string `json:"savedAt"`
}

// DailyContentRequest asks for the content of a single day within a plan
type DailyContentRequest struct {
	Topic     string `json:"topic" validate:"required,min=10,max=1000"`
	DayNumber int    `json:"dayNumber" validate:"required,min=1,ltefield=TotalDays"`
	TotalDays int    `json:"totalDays" validate:"required,min=1,max=40"`
	Language  Locale `json:"language" validate:"required,locale"`
}

// DailyContent is the scripture, rationale and prayer for one day
type DailyContent struct {
	Scripture string `json:"scripture" validate:"required,notblank"`
	Rationale string `json:"rationale" validate:"required,notblank"`
	Prayer    string `json:"prayer" validate:"required,notblank"`
}
