package service

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/pageza/whatscooking/backend/config"
)

type EmailService struct {
	dialer      *gomail.Dialer
	fromEmail   string
	fromName    string
	frontendURL string
}

func NewEmailService(cfg *config.Config) IEmailService {
	var dialer *gomail.Dialer
	if cfg.SMTPHost != "" {
		dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}

	return &EmailService{
		dialer:      dialer,
		fromEmail:   cfg.EmailFrom,
		fromName:    cfg.EmailFromName,
		frontendURL: cfg.FrontendURL,
	}
}

// Send delivers one email with an HTML body and a plain-text alternative.
// When SMTP is not configured the email is logged instead, so local
// development works without a mail server.
func (s *EmailService) Send(to, subject, htmlBody, textBody string) error {
	if s.dialer == nil {
		log.Printf("SMTP not configured, logging email:\nTo: %s\nSubject: %s\nBody:\n%s\n--- End Email ---", to, subject, textBody)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.fromEmail, s.fromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *EmailService) SendOTPEmail(to, code string) error {
	subject := "Your OTP Code for What's Cooking"
	text := fmt.Sprintf("Your OTP code is: %s\nIt expires in 10 minutes.", code)
	return s.Send(to, subject, s.buildOTPEmailBody(code), text)
}

func (s *EmailService) SendWelcomeEmail(to, name string) error {
	subject := "Welcome to What's Cooking!"
	text := fmt.Sprintf("Hello %s, your account is ready. Happy cooking!", name)
	return s.Send(to, subject, s.buildWelcomeEmailBody(name), text)
}

func (s *EmailService) buildOTPEmailBody(code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Verification Code</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(90deg, #f6a623, #e67e22); color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 22px;">🔎 What's Cooking?</h1>
		<p style="margin: 5px 0 0; font-size: 14px;">Your culinary adventure awaits!</p>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #5c2d91; margin-top: 0;">Hello!</h2>
		<p>Welcome to <b>What's Cooking!</b> To complete your account setup, please enter this verification code:</p>

		<div style="background: #fff7e6; border: 2px dashed #f6a623; text-align: center; font-size: 28px; font-weight: bold; color: #f39c12; letter-spacing: 5px; padding: 18px; border-radius: 6px; margin: 25px 0;">
			%s
		</div>

		<p><b>Important:</b></p>
		<ul style="padding-left: 20px;">
			<li>This code will expire in <b>10 minutes</b></li>
			<li>Don't share this code with anyone</li>
			<li>Enter it exactly as shown above</li>
		</ul>
		<p>If you didn't request this verification code, you can safely ignore this email.</p>
	</div>
</body>
</html>
`, code)
}

func (s *EmailService) buildWelcomeEmailBody(name string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Welcome to What's Cooking!</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(90deg, #f6a623, #e67e22); color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 28px;">🎉 Welcome to What's Cooking!</h1>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #e67e22; margin-top: 0;">Hello %s!</h2>
		<p>Your account is ready. Tell us what's in your kitchen and we'll suggest what to cook.</p>

		<div style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background-color: #e67e22; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold; font-size: 16px; display: inline-block;">
				Start Cooking
			</a>
		</div>

		<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
			<p style="color: #666; font-size: 12px; margin: 0;">
				Happy cooking! 🍳<br>
				The What's Cooking Team
			</p>
		</div>
	</div>
</body>
</html>
`, name, s.frontendURL)
}
