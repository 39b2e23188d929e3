package email

import (
	"fmt"
	"html"
)

const appName = "iEquus"

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #7c4a1e;">Hi %s,</h2>
    %s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The %s Team</p>
</body>
</html>`

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// BuildWelcomeEmail greets a newly registered veterinarian.
func BuildWelcomeEmail(to, name string) Message {
	name = greetingName(name)

	text := fmt.Sprintf(`Hi %s,

Your %s account is ready. You can now register horses, record appointments and track body condition from the app.

The %s Team`, name, appName, appName)

	body := fmt.Sprintf(`<p>Your %s account is ready.</p>
    <p>You can now register horses, record appointments and track body condition from the app.</p>`, appName)

	return Message{
		To:       []string{to},
		Subject:  fmt.Sprintf("Welcome to %s", appName),
		TextBody: text,
		HTMLBody: fmt.Sprintf(htmlLayout, html.EscapeString(name), body, appName),
	}
}

// BuildPasswordChangedEmail notifies the account owner of a password change.
func BuildPasswordChangedEmail(to, name string) Message {
	name = greetingName(name)

	text := fmt.Sprintf(`Hi %s,

The password of your %s account was just changed. If this was not you, contact your hospital administrator immediately.

The %s Team`, name, appName, appName)

	body := fmt.Sprintf(`<p>The password of your %s account was just changed.</p>
    <p style="color: #ef4444;">If this was not you, contact your hospital administrator immediately.</p>`, appName)

	return Message{
		To:       []string{to},
		Subject:  fmt.Sprintf("Your %s password was changed", appName),
		TextBody: text,
		HTMLBody: fmt.Sprintf(htmlLayout, html.EscapeString(name), body, appName),
	}
}
