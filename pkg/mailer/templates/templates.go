package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	Welcome      = "welcome"
	RoleAssigned = "role_assigned"
)

// EmailData is the data every template renders from.
type EmailData struct {
	AppName   string
	Name      string
	UserName  string
	Email     string
	Role      string
	Time      string
	TimeAt    time.Time
	SupportTo string
}

// Option customises EmailData.
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.TimeAt = t.UTC()
		d.Time = d.TimeAt.Format("02 January 2006, 15:04 MST")
	}
}

func WithRole(role string) Option       { return func(d *EmailData) { d.Role = role } }
func WithSupport(address string) Option { return func(d *EmailData) { d.SupportTo = address } }

// NewEmailData builds data for the given recipient. Name falls back to the user name.
func NewEmailData(appName, name, userName, email string, opts ...Option) EmailData {
	d := EmailData{AppName: appName, Name: strings.TrimSpace(name), UserName: userName, Email: email}
	if d.Name == "" {
		d.Name = userName
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper": strings.ToUpper,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

func renderFile(filename string, isHTML bool, data any) (string, error) {
	var (
		buf bytes.Buffer
		err error
	)
	if isHTML {
		tpl, e := htmpl.New(filename).Funcs(htmlFuncMap).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse html %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	} else {
		tpl, e := texttpl.New(filename).Funcs(textFuncMap).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse text %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	}
	if err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	subject, err = renderFile(name+".subject.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderFile(name+".text.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderFile(name+".html.tmpl", true, data)
	if err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
