package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ScorecardSchemaName names the structured output format sent to the model
const ScorecardSchemaName = "scorecard"

// ScoringSystemPrompt is the fixed instruction given to the grader
const ScoringSystemPrompt = "You are an expert conversation evaluator.\n" +
	"Score the following conversation transcript according to the provided rubric.\n" +
	"Be fair, constructive, and specific in your feedback.\n" +
	"Provide scores that accurately reflect performance with clear rationale."

// ErrInvalidScorecard is returned when model output does not satisfy the scorecard schema
var ErrInvalidScorecard = errors.New("model output does not match the scorecard schema")

// CriterionScore is one graded rubric criterion
type CriterionScore struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Rationale string  `json:"rationale"`
}

// Scorecard is validated grader output
type Scorecard struct {
	OverallScore   float64          `json:"overall_score"`
	CriteriaScores []CriterionScore `json:"criteria_scores"`
	Feedback       string           `json:"feedback"`
}

// BuildScoringPrompt embeds the rubric and flattened transcript in the user prompt
func BuildScoringPrompt(rubric, transcript string) string {
	return fmt.Sprintf("## Rubric\n%s\n\n## Transcript\n%s\n\nEvaluate this conversation according to the rubric criteria above.", rubric, transcript)
}

// ScorecardSchema returns the strict JSON Schema for grader output
func ScorecardSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"overall_score", "criteria_scores", "feedback"},
		"properties": map[string]any{
			"overall_score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall score from 0 to 100",
			},
			"criteria_scores": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name", "score", "max_score", "rationale"},
					"properties": map[string]any{
						"name":      map[string]any{"type": "string", "description": "Name of the criterion"},
						"score":     map[string]any{"type": "number", "minimum": 0, "description": "Score achieved"},
						"max_score": map[string]any{"type": "number", "minimum": 1, "description": "Maximum possible score"},
						"rationale": map[string]any{"type": "string", "description": "Explanation for the score"},
					},
				},
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Overall constructive feedback",
			},
		},
	}
}

// wire types keep pointers so a missing key is distinguishable from zero
type scorecardWire struct {
	OverallScore   *float64        `json:"overall_score" validate:"required,gte=0,lte=100"`
	CriteriaScores []criterionWire `json:"criteria_scores" validate:"required,dive"`
	Feedback       *string         `json:"feedback" validate:"required"`
}

type criterionWire struct {
	Name      *string  `json:"name" validate:"required"`
	Score     *float64 `json:"score" validate:"required,gte=0"`
	MaxScore  *float64 `json:"max_score" validate:"required,gte=1"`
	Rationale *string  `json:"rationale" validate:"required"`
}

var scorecardValidator = validator.New()

// DecodeScorecard validates a generated object against the scorecard schema.
// Any violation is fatal; no partial scorecard is returned.
func DecodeScorecard(obj map[string]any) (*Scorecard, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidScorecard)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var wire scorecardWire
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}
	if err := scorecardValidator.Struct(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}

	card := &Scorecard{
		OverallScore:   *wire.OverallScore,
		CriteriaScores: make([]CriterionScore, 0, len(wire.CriteriaScores)),
		Feedback:       *wire.Feedback,
	}
	for _, c := range wire.CriteriaScores {
		card.CriteriaScores = append(card.CriteriaScores, CriterionScore{
			Name:      *c.Name,
			Score:     *c.Score,
			MaxScore:  *c.MaxScore,
			Rationale: *c.Rationale,
		})
	}
	return card, nil
}
