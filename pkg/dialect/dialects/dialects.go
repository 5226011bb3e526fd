// Package dialects registers every built-in diagram syntax codec and
// provides lookup by diagram type or by sniffing the text itself.
package dialects

import (
	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/dialect/arch"
	"github.com/schemadraw/schemadraw/pkg/dialect/class"
	"github.com/schemadraw/schemadraw/pkg/dialect/er"
	"github.com/schemadraw/schemadraw/pkg/dialect/flow"
	"github.com/schemadraw/schemadraw/pkg/dialect/seq"
	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// All returns one codec per supported diagram type.
func All() []dialect.Codec {
	return []dialect.Codec{
		er.New(),
		class.New(),
		seq.New(),
		flow.New(),
		arch.New(),
	}
}

// ForType returns the codec for a diagram type.
func ForType(t diagram.Type) (dialect.Codec, error) {
	return dialect.ForType(t, All()...)
}

// Detect returns the codec whose syntax matches the text.
func Detect(text string) (dialect.Codec, error) {
	return dialect.Detect(text, All()...)
}

// Import detects the dialect and parses the text in one step.
func Import(text string, opts dialect.ImportOptions) (*dialect.ImportResult, error) {
	codec, err := Detect(text)
	if err != nil {
		return nil, err
	}
	return codec.Import(text, opts)
}

// Export renders a diagram in the dialect matching its type.
func Export(d *diagram.Diagram) (string, error) {
	codec, err := ForType(d.Type)
	if err != nil {
		return "", err
	}
	return codec.Export(d)
}
