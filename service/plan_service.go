package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"praytogether-backend/logger"
	"praytogether-backend/models"
	"praytogether-backend/requestctx"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("praytogether-backend/service")

// PlanService generates prayer plans and daily content
type PlanService struct {
	generator TextGenerator
	log       *logger.Logger
}

// PlanServiceOption is a functional option for PlanService
type PlanServiceOption func(*PlanService)

// PlanWithGenerator sets the text generator
func PlanWithGenerator(g TextGenerator) PlanServiceOption {
	return func(s *PlanService) {
		s.generator = g
	}
}

// PlanWithLogger sets the logger
func PlanWithLogger(log *logger.Logger) PlanServiceOption {
	return func(s *PlanService) {
		s.log = log
	}
}

// NewPlanService creates a new plan service
func NewPlanService(opts ...PlanServiceOption) *PlanService {
	s := &PlanService{log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizePlanRequest trims the reason, lower-cases the language and maps the
// Bible version to its catalog id
func NormalizePlanRequest(req models.PrayerPlanRequest) models.PrayerPlanRequest {
	req.Reason = strings.TrimSpace(req.Reason)
	req.Language = models.Locale(strings.ToLower(strings.TrimSpace(string(req.Language))))
	req.BibleVersion = strings.TrimSpace(req.BibleVersion)
	if v, ok := models.FindBibleVersion(req.BibleVersion); ok {
		req.BibleVersion = v.ID
	}
	return req
}

// CreatePrayerPlan validates the request, asks the model for a plan and
// validates what comes back. It has no side effects.
func (s *PlanService) CreatePrayerPlan(ctx context.Context, req models.PrayerPlanRequest) (*models.PrayerPlanResult, error) {
	if s.generator == nil {
		return nil, errors.New("text generator not set")
	}

	req = NormalizePlanRequest(req)
	if err := validateStruct(requestctx.Locale(ctx), req); err != nil {
		return nil, err
	}

	prompt, err := renderPlanPrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PlanService.CreatePrayerPlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.language", string(req.Language)),
		attribute.String("plan.bible_version", req.BibleVersion),
	)

	raw, err := s.generator.GenerateJSON(ctx, prompt, prayerPlanSchema)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.log.Error("prayer plan generation failed", "error", err, "language", req.Language)
		return nil, &GenerationError{Err: err}
	}

	var result models.PrayerPlanResult
	if err := decodeModelJSON(raw, &result); err != nil {
		s.log.Warn("prayer plan output unreadable", "error", err, "length", len(raw))
		return nil, &GenerationError{Err: err}
	}

	if len(result.Entries) == 0 {
		span.SetStatus(codes.Error, "empty plan")
		return nil, &GenerationError{Empty: true, Err: errors.New("empty entries")}
	}
	span.SetAttributes(attribute.Int("plan.entries", len(result.Entries)))

	result.ReasonContext = req.Reason
	result.LanguageContext = string(req.Language)
	result.BibleVersionContext = req.BibleVersion
	for i := range result.Entries {
		if result.Entries[i].ActionSteps == nil {
			result.Entries[i].ActionSteps = models.ActionSteps{}
		}
	}

	if err := validate.Struct(result); err != nil {
		s.log.Warn("prayer plan output failed validation", "error", err)
		return nil, &GenerationError{Err: fmt.Errorf("invalid plan: %w", err)}
	}

	s.log.Info("prayer plan generated", "language", req.Language, "entries", len(result.Entries))
	return &result, nil
}

// NormalizeDailyContentRequest trims the topic and lower-cases the language
func NormalizeDailyContentRequest(req models.DailyContentRequest) models.DailyContentRequest {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Language = models.Locale(strings.ToLower(strings.TrimSpace(string(req.Language))))
	return req
}

// GenerateDailyContent produces the scripture, rationale and prayer for one
// day of a plan
func (s *PlanService) GenerateDailyContent(ctx context.Context, req models.DailyContentRequest) (*models.DailyContent, error) {
	if s.generator == nil {
		return nil, errors.New("text generator not set")
	}

	req = NormalizeDailyContentRequest(req)
	if err := validateStruct(requestctx.Locale(ctx), req); err != nil {
		return nil, err
	}

	prompt, err := renderDailyPrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PlanService.GenerateDailyContent")
	defer span.End()
	span.SetAttributes(attribute.Int("plan.day", req.DayNumber), attribute.Int("plan.total_days", req.TotalDays))

	raw, err := s.generator.GenerateJSON(ctx, prompt, dailyContentSchema)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.log.Error("daily content generation failed", "error", err, "day", req.DayNumber)
		return nil, &GenerationError{Err: err}
	}

	var content models.DailyContent
	if err := decodeModelJSON(raw, &content); err != nil {
		return nil, &GenerationError{Err: err}
	}
	if err := validate.Struct(content); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("invalid daily content: %w", err)}
	}

	return &content, nil
}

// decodeModelJSON strips a markdown code fence if present and decodes one
// JSON object. Unknown fields are ignored; trailing data is an error.
func decodeModelJSON(raw string, v interface{}) error {
	text := stripCodeFence(raw)
	if text == "" {
		return errors.New("empty model output")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after model output")
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an info string such as "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
