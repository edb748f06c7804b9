package ensemble

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mehak151/unfurl/internal/schema"
)

// KindEnsemble is the document kind this frontend accepts.
const KindEnsemble = "Ensemble"

// ParseFailureError reports document text that is not a valid ensemble.
type ParseFailureError struct {
	Detail string
	Err    error
}

func (e *ParseFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse ensemble document: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse ensemble document: %s", e.Detail)
}

func (e *ParseFailureError) Unwrap() error { return e.Err }

// Parse decodes document text into the wire schema and checks the envelope.
func Parse(text string) (*schema.Document, error) {
	var doc schema.Document
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseFailureError{Err: err}
	}
	if doc.Kind != "" && doc.Kind != KindEnsemble {
		return nil, &ParseFailureError{Detail: fmt.Sprintf("unsupported document kind '%s'", doc.Kind)}
	}
	return &doc, nil
}

// ParseImport decodes an imported template file.
func ParseImport(text string) (*schema.ImportDocument, error) {
	var doc schema.ImportDocument
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseFailureError{Err: err}
	}
	return &doc, nil
}
