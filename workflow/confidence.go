package workflow

import (
	"fmt"
	"math"
	"strings"

	"github.com/jakeh134/motionflow/model"
)

// DefaultConfidenceThreshold is used when a Validator has no threshold.
const DefaultConfidenceThreshold = 0.8

// ConfidenceBand buckets a score for badge colouring.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// BandFor returns the badge band of a confidence score.
func BandFor(c float64) ConfidenceBand {
	switch {
	case c >= 0.9:
		return BandHigh
	case c >= 0.7:
		return BandMedium
	default:
		return BandLow
	}
}

// Percent rounds a [0,1] score to a whole percentage, halves rounding up.
func Percent(c float64) int {
	return int(math.Floor(c*100 + 0.5))
}

// FieldHint is the advisory annotation for one form field.
type FieldHint struct {
	Field         string         `json:"field"`
	Label         string         `json:"label"`
	Value         string         `json:"value"`
	Required      bool           `json:"required"`
	Missing       bool           `json:"missing,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty"`
	Band          ConfidenceBand `json:"band,omitempty"`
	LowConfidence bool           `json:"low_confidence"`
	Warning       string         `json:"warning,omitempty"`
}

// Validator produces field hints. Hints never block saves or decisions.
type Validator struct {
	Threshold float64
	Schemas   *SchemaRegistry
}

func NewValidator(threshold float64, schemas *SchemaRegistry) *Validator {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if schemas == nil {
		schemas = NewSchemaRegistry()
	}
	return &Validator{Threshold: threshold, Schemas: schemas}
}

// IsLow reports whether a present confidence falls below the threshold.
func (v *Validator) IsLow(c float64) bool {
	return c < v.Threshold
}

// Warning formats the low-confidence annotation.
func Warning(c float64) string {
	return fmt.Sprintf("Low confidence (AI: %d%%)", Percent(c))
}

// Hints annotates every field of the motion's schema. values overrides the
// saved extracted data, e.g. with unsaved draft edits; it may be nil.
func (v *Validator) Hints(mo *model.Motion, values map[string]string) []FieldHint {
	schema := v.Schemas.For(mo.MotionType)
	hints := make([]FieldHint, 0, len(schema.Fields))

	for _, f := range schema.Fields {
		value, ok := values[f.Name]
		if !ok {
			value = fieldValue(mo, f.Name)
		}
		h := FieldHint{
			Field:    f.Name,
			Label:    f.Label,
			Value:    value,
			Required: f.Required,
			Missing:  f.Required && strings.TrimSpace(value) == "",
		}
		if c, ok := mo.Confidence(f.Name); ok && f.Scored {
			score := c
			h.Confidence = &score
			h.Band = BandFor(c)
			if v.IsLow(c) {
				h.LowConfidence = true
				h.Warning = Warning(c)
			}
		}
		hints = append(hints, h)
	}
	return hints
}

// LowConfidenceFields lists the scored fields of mo below the threshold.
func (v *Validator) LowConfidenceFields(mo *model.Motion) []string {
	var low []string
	for _, h := range v.Hints(mo, nil) {
		if h.LowConfidence {
			low = append(low, h.Field)
		}
	}
	return low
}

// fieldValue reads a field from extracted data, falling back to the top-level
// motion attributes the extractor also fills.
func fieldValue(mo *model.Motion, name string) string {
	if v, ok := mo.ExtractedData[name]; ok {
		return v
	}
	switch name {
	case "caseNumber":
		return mo.CaseNumber
	case "motionType":
		return mo.MotionType
	case "filerName":
		return mo.FilerName
	case "reason":
		return mo.Reason
	}
	return ""
}
