package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// SystemInstruction is sent with every structured-generation request.
//
//go:embed templates/system.txt
var SystemInstruction string

//go:embed templates/ideas.tmpl
var ideasTemplate string

//go:embed templates/image.tmpl
var imageTemplate string

//go:embed templates/script.tmpl
var scriptTemplate string

//go:embed templates/assessment.tmpl
var assessmentTemplate string

// Pre-parsed templates. template.Must panics on malformed templates, catching
// errors at program startup rather than at call time.
var (
	ideasTmpl      = template.Must(template.New("ideas").Parse(ideasTemplate))
	imageTmpl      = template.Must(template.New("image").Parse(imageTemplate))
	scriptTmpl     = template.Must(template.New("script").Parse(scriptTemplate))
	assessmentTmpl = template.Must(template.New("assessment").Parse(assessmentTemplate))
)

// render executes a pre-parsed template and trims surrounding whitespace.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
