package service

import (
	"fmt"
	"html"
)

func verifyEmailTemplate(verifyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Verify your email for %s", appName)
	body := fmt.Sprintf(`<p>Welcome to %s!</p>
<p>Please confirm your email address to activate your account:</p>
<p><a target="_blank" href="%s">Verify email</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(appName), html.EscapeString(verifyURL), html.EscapeString(appName))

	return subject, body
}
