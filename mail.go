package identity

import (
	"bytes"
	"context"
	"crypto/tls"
	htmltemplate "html/template"
	"text/template"

	mail "github.com/go-mail/mail"
	"github.com/goliatone/go-errors"
)

// SMTPMailer delivers messages over SMTP as multipart/alternative when both
// bodies are provided.
type SMTPMailer struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	Logger             Logger
}

// NewSMTPMailer creates a mailer with TLS negotiated automatically.
func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
		Logger:  defLogger{},
	}
}

// Send implements MailSender.
func (s *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "mail send canceled")
	default:
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": the dialer negotiates STARTTLS when offered
	}

	if err := d.DialAndSend(m); err != nil {
		if s.Logger != nil {
			s.Logger.Error("SMTPMailer failed to send to %s: %v", to, err)
		}
		return errors.Wrap(err, errors.CategoryOperation, "smtp send failed")
	}

	return nil
}

// RecoveryMailVars is the template context for password recovery messages.
type RecoveryMailVars struct {
	Email string
	Code  string
}

type recoveryTemplates struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

func parseRecoveryTemplates(subject, textBody, htmlBody string) (*recoveryTemplates, error) {
	txt, err := template.New("recovery_text").Parse(textBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid recovery text template")
	}

	html, err := htmltemplate.New("recovery_html").Parse(htmlBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid recovery HTML template")
	}

	return &recoveryTemplates{
		subject: subject,
		text:    txt,
		html:    html,
	}, nil
}

// Render executes both bodies against vars and returns text then HTML.
func (rt *recoveryTemplates) Render(vars RecoveryMailVars) (string, string, error) {
	var txt bytes.Buffer
	if err := rt.text.Execute(&txt, vars); err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to render recovery text body")
	}

	var html bytes.Buffer
	if err := rt.html.Execute(&html, vars); err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to render recovery HTML body")
	}

	return txt.String(), html.String(), nil
}
