package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/maktabuz/maktab/fs"
)

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplInit      sync.Once
	tmplErr       error
)

type (
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

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads the embedded email templates. Called once at startup;
// Render lazily falls back to it for tests that skip app wiring.
func ParseEmailTemplates() error {
	tmplInit.Do(func() {
		textTemplates, tmplErr = texttmpl.ParseFS(appfs.FS, "templates/email/*.txt")
		if tmplErr != nil {
			tmplErr = errors.Wrap(tmplErr, "parsing text email templates")
			return
		}
		htmlTemplates, tmplErr = htmltmpl.ParseFS(appfs.FS, "templates/email/*.gohtml")
		if tmplErr != nil {
			tmplErr = errors.Wrap(tmplErr, "parsing html email templates")
		}
	})
	return tmplErr
}

func (m *EmailMessage) contextData(conf *Config) ContextData {
	return ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

// Render materializes TextContent / HTMLContent from BodyStr or the named template.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	if err := ParseEmailTemplates(); err != nil {
		return err
	}

	data := m.contextData(conf)

	if tmpl := textTemplates.Lookup(m.TemplateName + ".txt"); tmpl != nil {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering "+m.TemplateName+".txt")
		}
		m.TextContent = strings.TrimSpace(buff.String())
	}
	if tmpl := htmlTemplates.Lookup(m.TemplateName + ".gohtml"); tmpl != nil {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering "+m.TemplateName+".gohtml")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
