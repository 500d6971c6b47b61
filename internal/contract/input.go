package contract

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/personalens/personalens/schema"
)

// LoadAnalysisInput reads an analysis input file. YAML and JSON are both accepted.
// A "-" path reads from stdin. A document that is a plain list of strings is
// treated as the texts field.
func LoadAnalysisInput(path string) (*schema.AnalysisInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return ParseAnalysisInput(data)
}

// ParseAnalysisInput decodes the content of an analysis input file.
func ParseAnalysisInput(data []byte) (*schema.AnalysisInput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	input := &schema.AnalysisInput{}
	if err := yaml.Unmarshal(data, input); err == nil {
		return input, nil
	}

	var texts []string
	if err := yaml.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}
	input.Texts = texts
	return input, nil
}
