package email

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

type ContactService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	to       string
}

func NewContactService() *ContactService {
	return &ContactService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		to:       os.Getenv("CONTACT_EMAIL"),
	}
}

// headerSanitizer strips CR and LF so form input cannot terminate a
// header line and smuggle extra headers into the message.
var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// SendContactMessage forwards a contact-form submission to the blog owner.
func (e *ContactService) SendContactMessage(name, replyTo, text string) error {
	if e.host == "" || e.to == "" {
		return fmt.Errorf("contact email is not configured")
	}

	message := e.buildMessage(name, replyTo, text)

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.from, []string{e.to}, []byte(message)); err != nil {
		return fmt.Errorf("error sending contact email: %v", err)
	}

	return nil
}

func (e *ContactService) buildMessage(name, replyTo, text string) string {
	name = headerSanitizer.Replace(name)
	replyTo = headerSanitizer.Replace(replyTo)

	subject := fmt.Sprintf("New contact message from %s", name)
	body := fmt.Sprintf(`You received a new message through the contact form.

From: %s <%s>

%s
`, name, replyTo, text)

	return fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Reply-To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, e.to, replyTo, subject, body)
}
