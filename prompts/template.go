package prompts

import (
	"regexp"
	"strings"

	"github.com/aqua777/docbot/llm"
)

// templateVarRegex matches {variable} placeholders in templates.
var templateVarRegex = regexp.MustCompile(`\{(\w+)\}`)

// GetTemplateVars extracts variable names from a template string.
func GetTemplateVars(template string) []string {
	matches := templateVarRegex.FindAllStringSubmatch(template, -1)
	vars := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, match := range matches {
		if len(match) > 1 && !seen[match[1]] {
			vars = append(vars, match[1])
			seen[match[1]] = true
		}
	}
	return vars
}

// FormatString formats a template string with the given variables.
func FormatString(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// PromptTemplate is a string-based prompt template with {variable}
// placeholders.
type PromptTemplate struct {
	Template     string
	TemplateVars []string
}

// NewPromptTemplate creates a new PromptTemplate.
func NewPromptTemplate(template string) *PromptTemplate {
	return &PromptTemplate{
		Template:     template,
		TemplateVars: GetTemplateVars(template),
	}
}

// Format formats the prompt into a string.
func (pt *PromptTemplate) Format(vars map[string]string) string {
	return FormatString(pt.Template, vars)
}

// FormatMessages formats the prompt into chat messages.
func (pt *PromptTemplate) FormatMessages(vars map[string]string) []llm.ChatMessage {
	return []llm.ChatMessage{llm.NewUserMessage(pt.Format(vars))}
}
