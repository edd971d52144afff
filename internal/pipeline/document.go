package pipeline

const (
	fallbackTitle       = "REST API Specification"
	fallbackDescription = "REST API based on user requirements."
)

// SpecDocument is the OpenAPI document assembled during the last phase.
// Field order matches the order the document is written in.
type SpecDocument struct {
	OpenAPI    string         `json:"openapi"`
	Info       Info           `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components Components     `json:"components"`
}

type Info struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Version        string   `json:"version"`
	Contact        *Contact `json:"contact,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Email string `json:"email"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Components struct {
	Schemas         map[string]any            `json:"schemas"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
}

// NewSpecDocument returns the starting document of a run. Every call
// returns fresh maps, so runs never share state.
func NewSpecDocument() *SpecDocument {
	return &SpecDocument{
		OpenAPI: "3.0.0",
		Info: Info{
			Title:       "API Specification",
			Description: "REST API based on user requirements",
			Version:     "1.0.0",
		},
		Servers: []Server{
			{URL: "https://api.example.com/v1", Description: "Production server"},
			{URL: "https://staging-api.example.com/v1", Description: "Staging server"},
		},
		Paths: map[string]any{},
		Components: Components{
			Schemas: map[string]any{},
			SecuritySchemes: map[string]SecurityScheme{
				"BearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
			},
		},
	}
}

// setSupportInfo adds the fixed contact and terms of service fields.
func (d *SpecDocument) setSupportInfo() {
	d.Info.Contact = &Contact{
		Name:  "API Support",
		URL:   "https://example.com/support",
		Email: "api-support@example.com",
	}
	d.Info.TermsOfService = "https://example.com/terms"
}
