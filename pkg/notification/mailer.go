package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type NoticeType string

const (
	EmailVerificationNotice  NoticeType = "email_verification"
	PasswordResetNotice      NoticeType = "password_reset"
	AccountCredentialsNotice NoticeType = "account_credentials"
)

//go:embed templates/email/*
var templateFiles embed.FS

type noticeTemplate struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var subjects = map[NoticeType]string{
	EmailVerificationNotice:  "Confirm your email address",
	PasswordResetNotice:      "Password reset request",
	AccountCredentialsNotice: "Your new account",
}

func loadTemplates() (map[NoticeType]noticeTemplate, error) {
	out := make(map[NoticeType]noticeTemplate, len(subjects))
	for notice, subject := range subjects {
		base := "templates/email/" + string(notice)
		text, err := texttemplate.ParseFS(templateFiles, base+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text template: %w", notice, err)
		}
		html, err := htmltemplate.ParseFS(templateFiles, base+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html template: %w", notice, err)
		}
		out[notice] = noticeTemplate{subject: subject, text: text, html: html}
	}
	return out, nil
}

// Mailer renders notices and hands them to a Deliverer.
type Mailer struct {
	deliverer Deliverer
	from      string
	loginURL  string
	templates map[NoticeType]noticeTemplate
}

// NewMailer builds a Mailer sending as from. loginURL is included in
// credential notices.
func NewMailer(deliverer Deliverer, from, loginURL string) (*Mailer, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Mailer{
		deliverer: deliverer,
		from:      from,
		loginURL:  loginURL,
		templates: templates,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, notice NoticeType, to string, data map[string]string) error {
	tmpl, ok := m.templates[notice]
	if !ok {
		return fmt.Errorf("unknown notice type %q", notice)
	}

	var text, html bytes.Buffer
	if err := tmpl.text.Execute(&text, data); err != nil {
		return fmt.Errorf("render %s: %w", notice, err)
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return fmt.Errorf("render %s: %w", notice, err)
	}

	return m.deliverer.Deliver(ctx, Message{
		From:     m.from,
		To:       to,
		Subject:  tmpl.subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	})
}

func (m *Mailer) SendVerificationMessage(ctx context.Context, email, link string) error {
	return m.Send(ctx, EmailVerificationNotice, email, map[string]string{"Link": link})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, link, validFor string) error {
	return m.Send(ctx, PasswordResetNotice, email, map[string]string{"Link": link, "ValidFor": validFor})
}

// SendCredentials delivers the generated password of an invited account.
func (m *Mailer) SendCredentials(ctx context.Context, email, password string) error {
	return m.Send(ctx, AccountCredentialsNotice, email, map[string]string{
		"Email":    email,
		"Password": password,
		"Link":     m.loginURL,
	})
}
