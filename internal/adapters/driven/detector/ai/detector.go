// Package ai implements question detection through the OpenAI Responses API.
//
// The detector is layered on top of a local heuristic: texts the heuristic
// already accepts are never sent to the API, and when the API fails the
// heuristic verdict stands. A persistent error budget disables the API for
// the rest of the run so a broken key or outage degrades to pure heuristics
// instead of stalling the traversal.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"github.com/fragvis/fragvis-cli/internal/core/domain"
	"github.com/fragvis/fragvis-cli/internal/core/ports/driven"
	"github.com/fragvis/fragvis-cli/internal/logger"
)

// Ensure Detector implements the interface.
var _ driven.Detector = (*Detector)(nil)

// Source identifies verdicts produced by the API.
const Source = "ai"

const (
	// DefaultModel is used when the configuration does not name one.
	DefaultModel = "gpt-4o-mini"

	// maxAPIErrors is the error budget before the API is disabled for the
	// remainder of the run.
	maxAPIErrors = 5

	// minWords is the shortest text worth an API round trip. Shorter texts
	// are left to the heuristic verdict.
	minWords = 3
)

const instructions = `You classify Discord messages written in Swedish. ` +
	`Decide whether the message is a question seeking an answer, even when it ` +
	`lacks a question mark. Respond with JSON only.`

// verdictSchema is the strict output schema for the classification.
var verdictSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"is_question": map[string]any{"type": "boolean"},
		"confidence":  map[string]any{"type": "number"},
	},
	"required":             []string{"is_question", "confidence"},
	"additionalProperties": false,
}

type verdict struct {
	IsQuestion bool    `json:"is_question"`
	Confidence float64 `json:"confidence"`
}

// Detector asks the API about texts the heuristic rejected.
type Detector struct {
	client   *openai.Client
	model    string
	fallback driven.Detector

	mu         sync.Mutex
	errorCount int
}

// NewDetector layers API classification over the fallback detector.
func NewDetector(client *openai.Client, model string, fallback driven.Detector) *Detector {
	if model == "" {
		model = DefaultModel
	}
	return &Detector{client: client, model: model, fallback: fallback}
}

// Classify runs the heuristic first and consults the API only for texts the
// heuristic rejected. API failures count against the error budget and fall
// back to the heuristic verdict without surfacing an error.
func (d *Detector) Classify(ctx context.Context, text string) (domain.Detection, error) {
	det, err := d.fallback.Classify(ctx, text)
	if err != nil {
		return det, err
	}
	if det.IsQuestion {
		return det, nil
	}
	if len(strings.Fields(text)) < minWords || d.disabled() {
		return det, nil
	}

	v, err := d.ask(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Detection{}, ctx.Err()
		}
		d.recordError()
		logger.Warn("ai detector: falling back to heuristic verdict: %v", err)
		return det, nil
	}
	d.recordSuccess()

	if !v.IsQuestion {
		return det, nil
	}
	return domain.Detection{IsQuestion: true, Confidence: v.Confidence, Source: Source}, nil
}

// ask performs one classification round trip.
func (d *Detector) ask(ctx context.Context, text string) (verdict, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "QuestionVerdict",
			Schema:      verdictSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Question classification JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           d.model,
		MaxOutputTokens: openai.Int(64),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := d.client.Responses.New(ctx, params)
	if err != nil {
		return verdict{}, fmt.Errorf("classify: %w", err)
	}

	var v verdict
	if err := json.Unmarshal([]byte(resp.OutputText()), &v); err != nil {
		return verdict{}, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return v, nil
}

func (d *Detector) disabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errorCount >= maxAPIErrors
}

func (d *Detector) recordError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errorCount++
	if d.errorCount == maxAPIErrors {
		logger.Warn("ai detector: %d consecutive API failures, disabled for the rest of the run", maxAPIErrors)
	}
}

func (d *Detector) recordSuccess() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errorCount = 0
}
