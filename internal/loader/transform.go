package loader

import (
	"github.com/kolah/specwright/internal/model"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Summarize lowers a loaded document to the summary printed after a run.
func Summarize(result *Result) *model.Spec {
	doc := result.Document.Model

	spec := &model.Spec{
		Version: result.Version,
		Info:    transformInfo(doc.Info),
		Servers: transformServers(doc.Servers),
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			spec.Paths = append(spec.Paths, transformPath(pathStr, pathItem))
		}
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name := range doc.Components.Schemas.FromOldest() {
			spec.Schemas = append(spec.Schemas, name)
		}
	}

	if doc.Components != nil && doc.Components.SecuritySchemes != nil {
		for name, scheme := range doc.Components.SecuritySchemes.FromOldest() {
			spec.SecuritySchemes = append(spec.SecuritySchemes, transformSecurityScheme(name, scheme))
		}
	}

	return spec
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	result := model.Info{
		Title:          info.Title,
		Description:    info.Description,
		Version:        info.Version,
		TermsOfService: info.TermsOfService,
	}
	if info.Contact != nil {
		result.Contact = &model.Contact{
			Name:  info.Contact.Name,
			URL:   info.Contact.URL,
			Email: info.Contact.Email,
		}
	}
	return result
}

func transformServers(servers []*v3.Server) []model.Server {
	var result []model.Server
	for _, s := range servers {
		result = append(result, model.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return result
}

func transformPath(pathStr string, pathItem *v3.PathItem) model.Path {
	path := model.Path{Path: pathStr}

	// Use a slice for deterministic ordering
	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op != nil {
			path.Methods = append(path.Methods, m.method)
		}
	}

	return path
}

func transformSecurityScheme(name string, scheme *v3.SecurityScheme) model.SecurityScheme {
	return model.SecurityScheme{
		Name:         name,
		Type:         model.SecuritySchemeType(scheme.Type),
		Scheme:       scheme.Scheme,
		BearerFormat: scheme.BearerFormat,
	}
}
