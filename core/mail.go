package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"log"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/schoolmate/backend/fs"
)

const emailTemplatesDir = "assets/templates/email"

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
	tmplCache map[string]*tmplCacheEntry // {name: {tmplCacheEntry}}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) renderText(data ContextData) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	entry, ok := templates[m.TemplateName]
	if !ok || entry.text == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := entry.text.ExecuteTemplate(&buff, "base", data); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML(data ContextData) error {
	if m.TemplateName == "" {
		return nil
	}

	entry, ok := templates[m.TemplateName]
	if !ok || entry.html == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := entry.html.ExecuteTemplate(&buff, "base", data); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

// Render fills TextContent and HTMLContent. base carries the app wide template data.
func (m *EmailMessage) Render(base ContextData) error {
	if m.TemplateName != "" {
		ParseEmailTemplates(nil) // only parses once
	}
	base.Data = m.TemplateData
	if err := m.renderText(base); err != nil {
		return errors.Wrap(err, "rendering text content")
	}
	if err := m.renderHTML(base); err != nil {
		return errors.Wrap(err, "rendering html content")
	}
	if m.TemplateName != "" && !m.HasContent() {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// ParseEmailTemplates loads the embedded email templates once.
// Templates are `<name>.txt` and `<name>.gohtml`, each extending `_base.<ext>`.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)
		logErr := func(err error) {
			err = fmt.Errorf("core.ParseEmailTemplates: %v", err)
			if logger != nil {
				logger.Error(err.Error(), err)
			} else {
				log.Print(err)
			}
		}

		entries, err := fs.ReadDir(appfs.FS, emailTemplatesDir)
		if err != nil {
			logErr(err)
			return
		}

		for _, de := range entries {
			fname := de.Name()
			ext := path.Ext(fname)
			if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
				continue
			}
			name := strings.TrimSuffix(fname, ext)
			entry, ok := templates[name]
			if !ok {
				entry = new(tmplCacheEntry)
				templates[name] = entry
			}
			fp := path.Join(emailTemplatesDir, fname)
			if ext == ".txt" {
				tmpl, err := texttmpl.ParseFS(appfs.FS, path.Join(emailTemplatesDir, "_base.txt"), fp)
				if err != nil {
					logErr(err)
					continue
				}
				entry.text = tmpl.Option("missingkey=error")
			} else {
				tmpl, err := htmltmpl.ParseFS(appfs.FS, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
				if err != nil {
					logErr(err)
					continue
				}
				entry.html = tmpl.Option("missingkey=error")
			}
		}
	})
}
