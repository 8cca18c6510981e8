// Package mailer delivers the sweep's reminder messages. Transport lives
// behind the Mailer interface so the sweep can be exercised without an
// SMTP server.
package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// WarrantyWarningSubject builds the subject line for an expiring-warranty
// notice.
func WarrantyWarningSubject(productName string) string {
	return fmt.Sprintf("ACTION REQUIRED: %s Warranty Expiring", productName)
}

// WarrantyWarningHTML renders the expiring-warranty email body.
func WarrantyWarningHTML(userName, productName string, daysLeft int) string {
	return fmt.Sprintf(`
  <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #4F46E5; padding: 20px; text-align: center;">
      <h2 style="color: #ffffff; margin: 0;">Warranty Expiring Soon</h2>
    </div>
    <div style="padding: 20px; background-color: #ffffff;">
      <p style="font-size: 16px; color: #333;">Hi <strong>%s</strong>,</p>
      <p style="font-size: 16px; color: #333;">
        This is a friendly reminder that the warranty for your <strong>%s</strong> is expiring in <strong>%d days</strong>.
      </p>
      <p style="font-size: 16px; color: #333;">
        Please log in to your dashboard to review your coverage options or schedule a final maintenance check before the deadline.
      </p>
    </div>
    <div style="background-color: #f5f5f5; padding: 15px; text-align: center; color: #777; font-size: 12px;">
      <p style="margin: 0;">&copy; %d Warranty Tracker. All rights reserved.</p>
      <p style="margin: 5px 0 0 0;">You are receiving this because you opted into email notifications.</p>
    </div>
  </div>`, userName, productName, daysLeft, time.Now().Year())
}

// ServiceDueSubject builds the subject line for a service reminder.
func ServiceDueSubject(productName string) string {
	return fmt.Sprintf("Reminder: %s Service Due Soon", productName)
}

// ServiceDueHTML renders the service-due email body.
func ServiceDueHTML(userName, productName string, daysLeft int) string {
	return fmt.Sprintf(`
  <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #4F46E5; padding: 20px; text-align: center;">
      <h2 style="color: #ffffff; margin: 0;">Service Due Soon</h2>
    </div>
    <div style="padding: 20px; background-color: #ffffff;">
      <p style="font-size: 16px; color: #333;">Hi <strong>%s</strong>,</p>
      <p style="font-size: 16px; color: #333;">
        The next service for your <strong>%s</strong> is due in <strong>%d days</strong>.
      </p>
      <p style="font-size: 16px; color: #333;">
        Log in to your dashboard to review the service history and book an appointment.
      </p>
    </div>
    <div style="background-color: #f5f5f5; padding: 15px; text-align: center; color: #777; font-size: 12px;">
      <p style="margin: 0;">&copy; %d Warranty Tracker. All rights reserved.</p>
      <p style="margin: 5px 0 0 0;">You are receiving this because you opted into email notifications.</p>
    </div>
  </div>`, userName, productName, daysLeft, time.Now().Year())
}
