// Package templates embeds the default agent instructions and phase prompts.
package templates

import "embed"

//go:embed agents/*.tmpl prompts/*.tmpl
var FS embed.FS
