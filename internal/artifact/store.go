// Package artifact persists pipeline artifacts to the output directory.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Name string

const (
	Requirements  Name = "requirements"
	Architecture  Name = "architecture"
	Endpoints     Name = "endpoints"
	Spec          Name = "spec"
	Documentation Name = "documentation"
)

// Names lists every artifact in the order the pipeline produces them.
var Names = []Name{Requirements, Architecture, Endpoints, Spec, Documentation}

var fileNames = map[Name]string{
	Requirements:  "api_requirements.json",
	Architecture:  "api_architecture.json",
	Endpoints:     "api_endpoints.json",
	Spec:          "openapi_specification.json",
	Documentation: "api_documentation.md",
}

// FileName returns the on-disk file name of an artifact.
func FileName(name Name) string {
	return fileNames[name]
}

type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name Name) string {
	return filepath.Join(s.dir, FileName(name))
}

func (s *Store) SaveRequirements(text string) (string, error) {
	return s.writeJSON(Requirements, map[string]string{"requirements": text})
}

func (s *Store) SaveArchitecture(text string) (string, error) {
	return s.writeJSON(Architecture, map[string]string{"architecture": text})
}

// SaveEndpoints writes the endpoints value as extracted, whatever its shape.
func (s *Store) SaveEndpoints(v any) (string, error) {
	return s.writeJSON(Endpoints, v)
}

func (s *Store) SaveSpec(v any) (string, error) {
	return s.writeJSON(Spec, v)
}

func (s *Store) SaveDocumentation(text string) (string, error) {
	path := s.Path(Documentation)
	if err := writeFile(path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}

// Load decodes a JSON artifact into v.
func (s *Store) Load(name Name, v any) error {
	if name == Documentation {
		return fmt.Errorf("%s is not a JSON artifact", FileName(name))
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return fmt.Errorf("reading %s: %w", FileName(name), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", FileName(name), err)
	}
	return nil
}

func (s *Store) writeJSON(name Name, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", FileName(name), err)
	}
	path := s.Path(name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal encodes v the way artifacts are stored: two-space indent, no HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFile replaces path atomically so readers never see a partial artifact.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
