package events

import (
	"fmt"
	"strings"

	pkgstrings "spring-boot-operator/pkg/strings"
)

// MaxMessageLen bounds event messages; the API server rejects longer ones.
const MaxMessageLen = 1024

// MessageTemplateEngine provides message generation for events.
type MessageTemplateEngine struct {
	templates map[EventReason]string
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	return &MessageTemplateEngine{
		templates: map[EventReason]string{
			ReasonUnitActive:  "Application {{.Name}} is active",
			ReasonUnitBlocked: "Application {{.Name}} is blocked{{if .Message}}: {{.Message}}{{end}}",
			ReasonUnitWaiting: "Application {{.Name}} is waiting{{if .Message}}: {{.Message}}{{end}}",
		},
	}
}

// Render generates a message for the given event reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	template, exists := e.templates[reason]
	if !exists {
		return pkgstrings.Truncate(fmt.Sprintf("Event: %s for %s", reason, data.Name), MaxMessageLen)
	}
	return pkgstrings.Truncate(e.renderTemplate(template, data), MaxMessageLen)
}

// SetTemplate allows customizing the message template for a specific event reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, template string) {
	e.templates[reason] = template
}

// renderTemplate performs simple variable substitution with EventData.
func (e *MessageTemplateEngine) renderTemplate(template string, data EventData) string {
	result := renderConditional(template, "{{if .Message}}", "{{end}}", data.Message != "")
	result = strings.ReplaceAll(result, "{{.Name}}", data.Name)
	result = strings.ReplaceAll(result, "{{.Message}}", data.Message)
	return result
}

// renderConditional keeps or drops a single {{if ...}}...{{end}} block.
func renderConditional(template, startMarker, endMarker string, condition bool) string {
	start := strings.Index(template, startMarker)
	if start == -1 {
		return template
	}
	end := strings.Index(template[start:], endMarker)
	if end == -1 {
		return template
	}
	end += start

	if condition {
		return template[:start] + template[start+len(startMarker):end] + template[end+len(endMarker):]
	}
	return template[:start] + template[end+len(endMarker):]
}
