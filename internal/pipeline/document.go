package pipeline

import "github.com/google/uuid"

// Stage identifies how far through enforcement a document has
// progressed. Transitions are one-directional; a strict-mode failure
// halts the document at its current stage.
type Stage int

const (
	StageRaw Stage = iota
	StageSanitized
	StageDePreambled
	StageWrapped
	StagePlaceholdersFilled
	StageValidated
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageSanitized:
		return "sanitized"
	case StageDePreambled:
		return "depreambled"
	case StageWrapped:
		return "wrapped"
	case StagePlaceholdersFilled:
		return "placeholders_filled"
	case StageValidated:
		return "validated"
	case StageFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Document is the unit of work flowing through one generation request.
// It is request-local and never shared across concurrent invocations;
// concurrent hosts must construct one Document per request.
type Document struct {
	ID            string
	Request       string
	RawText       string
	SanitizedText string
	Body          string
	FinalText     string
	Stage         Stage
	Strict        bool
}

// NewDocument creates a document at StageRaw for the given request.
func NewDocument(request string, strict bool) *Document {
	return &Document{
		ID:      uuid.New().String(),
		Request: request,
		Stage:   StageRaw,
		Strict:  strict,
	}
}
