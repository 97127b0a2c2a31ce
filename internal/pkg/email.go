package pkg

import (
	"crypto/tls"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	return d.DialAndSend(m)
}

// ResetEmailHTML 密码重置邮件正文，带一次性链接
func ResetEmailHTML(webOrigin, token string, ttl time.Duration) string {
	hours := int(ttl.Hours())
	return fmt.Sprintf(
		`<p>您好，</p><p>点击 <a href="%s/change-password/%s">重置密码</a> 完成操作。</p><p>链接 %d 小时内有效，请勿泄露给他人。</p>`,
		webOrigin, token, hours)
}
