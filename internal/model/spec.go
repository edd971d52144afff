// Package model holds the summary of a generated OpenAPI document.
package model

type Spec struct {
	Version         string
	Info            Info
	Servers         []Server
	Paths           []Path
	Schemas         []string
	SecuritySchemes []SecurityScheme
}

// OperationCount returns the number of operations across all paths.
func (s *Spec) OperationCount() int {
	n := 0
	for _, p := range s.Paths {
		n += len(p.Methods)
	}
	return n
}

type Info struct {
	Title          string
	Description    string
	Version        string
	TermsOfService string
	Contact        *Contact
}

type Contact struct {
	Name  string
	URL   string
	Email string
}

type Server struct {
	URL         string
	Description string
}

type Path struct {
	Path    string
	Methods []Method
}
