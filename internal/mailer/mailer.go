// Package mailer delivers password-reset codes. SMTP is used when
// configured; the log mailer keeps development working without a relay.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

type Mailer interface {
	SendOTP(email, otp string) error
}

type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m *SMTPMailer) SendOTP(email, otp string) error {
	body := fmt.Sprintf("To: %s\r\nSubject: Your OTP Code\r\n\r\nYour OTP code is %s\r\n", email, otp)
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{email}, []byte(body))
}

// LogMailer writes the code to the application log instead of sending mail.
type LogMailer struct {
	Log zerolog.Logger
}

func (m *LogMailer) SendOTP(email, otp string) error {
	m.Log.Info().Str("email", email).Str("otp", otp).Msg("OTP issued (log mailer)")
	return nil
}
