package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrIncompleteRequest is matched by every validation error so callers can
// tell a precondition failure apart from a runtime failure.
var ErrIncompleteRequest = errors.New("generation request is incomplete")

type Familiarity string

const (
	FamiliarityBeginner     Familiarity = "Beginner"
	FamiliarityIntermediate Familiarity = "Intermediate"
	FamiliarityAdvanced     Familiarity = "Advanced"
)

// Familiarities lists the levels in the order the form presents them.
var Familiarities = []Familiarity{FamiliarityBeginner, FamiliarityIntermediate, FamiliarityAdvanced}

type Mode string

const (
	ModeLesson Mode = "Lesson"
	ModeQuiz   Mode = "Quiz"
)

var Modes = []Mode{ModeLesson, ModeQuiz}

const (
	MinTimeMinutes     = 5
	MaxTimeMinutes     = 120
	DefaultTimeMinutes = 30
)

// ParseFamiliarity matches raw against the known levels, ignoring case and
// surrounding whitespace. Unknown values return "" and false.
func ParseFamiliarity(raw string) (Familiarity, bool) {
	raw = strings.TrimSpace(raw)
	for _, f := range Familiarities {
		if strings.EqualFold(raw, string(f)) {
			return f, true
		}
	}
	return "", false
}

func ParseMode(raw string) (Mode, bool) {
	raw = strings.TrimSpace(raw)
	for _, m := range Modes {
		if strings.EqualFold(raw, string(m)) {
			return m, true
		}
	}
	return "", false
}

// GenerationRequest carries the learner's preferences for a single
// generation. It is owned by the caller and has no identity of its own.
type GenerationRequest struct {
	Topic        string      `json:"topic"`
	Familiarity  Familiarity `json:"familiarity"`
	Mode         Mode        `json:"mode"`
	TimeMinutes  int         `json:"timeMinutes"`
	Instructions string      `json:"instructions,omitempty"`
	Language     string      `json:"language,omitempty"`

	// ReferenceText is the normalized text of the uploaded documents.
	ReferenceText string `json:"-"`
}

// ValidationError lists every required field that is missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrIncompleteRequest
}

// Validate checks the preconditions for generation. Nothing is ingested or
// sent to the model until it returns nil.
func (r GenerationRequest) Validate() error {
	var fields []string
	if strings.TrimSpace(r.Topic) == "" {
		fields = append(fields, "topic")
	}
	if _, ok := ParseFamiliarity(string(r.Familiarity)); !ok {
		fields = append(fields, "familiarity")
	}
	if _, ok := ParseMode(string(r.Mode)); !ok {
		fields = append(fields, "mode")
	}
	if r.TimeMinutes < MinTimeMinutes || r.TimeMinutes > MaxTimeMinutes {
		fields = append(fields, "time")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Canonical returns a copy with trimmed text fields and the familiarity and
// mode spelled the way prompts expect them. Unknown values are left as is.
func (r GenerationRequest) Canonical() GenerationRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Instructions = strings.TrimSpace(r.Instructions)
	r.Language = strings.TrimSpace(r.Language)
	if f, ok := ParseFamiliarity(string(r.Familiarity)); ok {
		r.Familiarity = f
	}
	if m, ok := ParseMode(string(r.Mode)); ok {
		r.Mode = m
	}
	return r
}

// GenerationResult is the model output for one request.
type GenerationResult struct {
	ID        string            `json:"id"`
	Request   GenerationRequest `json:"request"`
	Content   string            `json:"content"`
	Model     string            `json:"model"`
	CreatedAt time.Time         `json:"createdAt"`
}
