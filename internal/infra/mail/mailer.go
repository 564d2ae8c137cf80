package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

const subject = "Your Affordable Smart Contract Audit Report"

const bodyTemplate = `Hello,

Thank you for using Affordable Smart Contract Audits. Your report is attached.

Summary:
%s

Regards,
Affordable Smart Contract Audits`

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
	UseTLS      bool
}

// Mailer delivers the finished report over SMTP with the document attached.
// The pipeline only hands over fully formed input; delivery mechanics stay
// out of the core.
type Mailer struct {
	cfg Config
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Deliver(ctx context.Context, recipient, summary, reportPath string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.SenderName, m.cfg.SenderEmail); err != nil {
		return fmt.Errorf("mail sender: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(bodyTemplate, summary))
	msg.AttachFile(reportPath)

	opts := []gomail.Option{gomail.WithPort(m.cfg.Port)}
	if m.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	cli, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := cli.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}
	return nil
}
