package contact

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrSMTPNotConfigured is returned when the SMTP relay has no credentials.
var ErrSMTPNotConfigured = errors.New("SMTP credentials not configured")

// SMTPRelay mails inquiries straight to the site owner.
type SMTPRelay struct {
	Host string
	Port string
	User string
	Pass string
	To   string

	// send defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (r *SMTPRelay) Deliver(ctx context.Context, p Payload) error {
	if r.User == "" || r.Pass == "" {
		return ErrSMTPNotConfigured
	}
	send := r.send
	if send == nil {
		send = smtp.SendMail
	}

	msg := composeMail(r.User, r.To, p)
	auth := smtp.PlainAuth("", r.User, r.Pass, r.Host)

	// net/smtp has no context support; run it aside and give up on ctx expiry.
	errc := make(chan error, 1)
	go func() {
		errc <- send(r.Host+":"+r.Port, auth, r.User, []string{r.To}, msg)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("sending inquiry mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sending inquiry mail: %w", ctx.Err())
	}
}

func composeMail(from, to string, p Payload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "New contact form submission from your portfolio:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	if p.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", p.Company)
	}
	if p.Position != "" {
		fmt.Fprintf(&b, "Position: %s\n", p.Position)
	}
	fmt.Fprintf(&b, "Inquiry: %s\n", p.InquiryType)
	fmt.Fprintf(&b, "Message:\n%s\n\n---\nSent from your portfolio contact form\n", p.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + headerSafe(p.Subject) + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerSafe(p.Email) + "\r\n" +
		"\r\n" +
		b.String() + "\r\n")
}

// headerSafe strips line breaks so form input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
