package prompt

import (
	"bytes"
	"text/template"
	"time"

	"github.com/cldixon/moodjournal/internal/mood"
)

// Context holds all the data available to a prompt template
type Context struct {
	Companion string
	Mood      string
	MoodLabel string
	Text      string
	Timestamp time.Time
}

// NewContext creates a prompt context for a single journal entry
func NewContext(companionDescription string, m mood.Mood, text string, ts time.Time) *Context {
	return &Context{
		Companion: companionDescription,
		Mood:      string(m),
		MoodLabel: m.Label(),
		Text:      text,
		Timestamp: ts,
	}
}

// DefaultTemplate is the built-in reflection prompt
const DefaultTemplate = `{{if .Companion}}## Your voice
{{.Companion}}

{{end}}My mood is {{.Mood}}. Here's my journal entry:

{{.Text}}

Write a short, empathetic reflection (2-4 sentences) on this entry.
Then add one line starting with "Themes:" naming the main emotions or themes.`

// Render executes a template string with the given context
func Render(tmpl string, ctx *Context) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// RenderDefault renders the default template with the given context
func RenderDefault(ctx *Context) (string, error) {
	return Render(DefaultTemplate, ctx)
}
