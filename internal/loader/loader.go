package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	RawData  []byte

	doc libopenapi.Document
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	config := &datamodel.DocumentConfiguration{
		BasePath: filepath.Dir(absPath),
	}

	return loadWithConfig(data, config)
}

// LoadBytes parses an in-memory document. External file references are not followed.
func LoadBytes(data []byte) (*Result, error) {
	return loadWithConfig(data, nil)
}

func loadWithConfig(data []byte, config *datamodel.DocumentConfiguration) (*Result, error) {
	var doc libopenapi.Document
	var err error

	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	return &Result{
		Document: model,
		Version:  version,
		RawData:  data,
		doc:      doc,
	}, nil
}

// Lint checks the document against the OpenAPI schema and returns one line
// per finding. No findings means the document is structurally valid.
func (r *Result) Lint() ([]string, error) {
	v, errs := validator.NewValidator(r.doc)
	if len(errs) > 0 {
		return nil, fmt.Errorf("creating validator: %w", errors.Join(errs...))
	}

	valid, findings := v.ValidateDocument()
	if valid {
		return nil, nil
	}

	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		line := f.Message
		if f.Reason != "" {
			line += ": " + f.Reason
		}
		lines = append(lines, line)
	}
	return lines, nil
}
