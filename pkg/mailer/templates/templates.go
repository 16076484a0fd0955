package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines the fields available to email templates.
type EmailData struct {
	Name    string
	Email   string
	Type    string
	AppName string

	ResetURL string

	ExpiresAt       time.Time
	ExpiresAtText   string
	ValidForMinutes int
}

const (
	ForgotPassword = "forgot_password"
)

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

// Parsed once; a broken template fails at startup instead of on first send.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, "*.html.tmpl"))
)

func execute(run func(*bytes.Buffer) error, name string) (string, error) {
	var buf bytes.Buffer
	if err := run(&buf); err != nil {
		return "", fmt.Errorf("render %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain-text and HTML parts for a template
// base name, from <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = execute(func(b *bytes.Buffer) error { return textSet.ExecuteTemplate(b, name+".subject.tmpl", data) }, name); err != nil {
		return "", "", "", err
	}
	if text, err = execute(func(b *bytes.Buffer) error { return textSet.ExecuteTemplate(b, name+".text.tmpl", data) }, name); err != nil {
		return "", "", "", err
	}
	if html, err = execute(func(b *bytes.Buffer) error { return htmlSet.ExecuteTemplate(b, name+".html.tmpl", data) }, name); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
