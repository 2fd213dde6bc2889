package compose

import (
	"fmt"
	"strings"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// FallbackTemplate is the canned message used whenever the generative
// provider fails. Rendering it can never fail, so message generation never
// blocks the export stage.
const FallbackTemplate = "Hi {first_name}, I'd love to connect regarding insights relevant to {position} at {company}."

// TemplateError reports a template referencing a placeholder outside the
// supported set.
type TemplateError struct {
	Placeholder string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("compose: unsupported placeholder {%s}", e.Placeholder)
}

func placeholderValues(lead model.QualifiedLead) map[string]string {
	return map[string]string{
		"first_name": lead.FirstName,
		"last_name":  lead.LastName,
		"position":   lead.Position,
		"company":    lead.Company,
	}
}

// RenderTemplate substitutes {first_name}, {last_name}, {position} and
// {company} into tmpl. Any other placeholder yields a *TemplateError. A "{"
// without a closing brace is kept literally.
func RenderTemplate(tmpl string, lead model.QualifiedLead) (string, error) {
	values := placeholderValues(lead)

	var b strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] != '{' {
			b.WriteByte(tmpl[i])
			i++
			continue
		}

		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}

		name := tmpl[i+1 : i+end]
		val, ok := values[name]
		if !ok {
			return "", &TemplateError{Placeholder: name}
		}
		b.WriteString(val)
		i += end + 1
	}

	return b.String(), nil
}

// ValidateTemplate checks a template against the supported placeholder set
// without rendering it, so callers can reject bad templates up front.
func ValidateTemplate(tmpl string) error {
	_, err := RenderTemplate(tmpl, model.QualifiedLead{})
	return err
}

// renderFallback fills the canned fallback template. FallbackTemplate only
// uses supported placeholders, so the error path is unreachable.
func renderFallback(lead model.QualifiedLead) string {
	text, _ := RenderTemplate(FallbackTemplate, lead)
	return text
}
