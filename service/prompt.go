package service

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"praytogether-backend/models"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type planPromptData struct {
	Reason         string
	Language       string
	LanguageCode   string
	BibleVersion   string
	BibleVersionID string
}

type dailyPromptData struct {
	Topic     string
	DayNumber int
	TotalDays int
	Language  string
}

func renderPlanPrompt(req models.PrayerPlanRequest) (string, error) {
	data := planPromptData{
		Reason:       req.Reason,
		Language:     req.Language.DisplayName(),
		LanguageCode: string(req.Language),
	}
	if v, ok := models.FindBibleVersion(req.BibleVersion); ok {
		data.BibleVersion = v.Name
		data.BibleVersionID = v.ID
	}
	return render("prayer_plan.tmpl", data)
}

func renderDailyPrompt(req models.DailyContentRequest) (string, error) {
	return render("daily_content.tmpl", dailyPromptData{
		Topic:     req.Topic,
		DayNumber: req.DayNumber,
		TotalDays: req.TotalDays,
		Language:  req.Language.DisplayName(),
	})
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
