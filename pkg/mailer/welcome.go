package mailer

import (
	"bytes"
	"html/template"
)

const welcomeSubject = "Welcome to Registery"

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>Hi {{.FullName}},</h2>
    <p>{{.Greeting}}</p>
    <p>Your account is ready. You can sign in with your email or with Google at any time.</p>
    <p style="color: #888; font-size: 12px;">You received this email because an account was registered with this address.</p>
  </body>
</html>`))

// RenderWelcome renders the welcome email for a job, returning subject, text
// and HTML bodies.
func RenderWelcome(job EmailJob) (subject, text, html string, err error) {
	greeting := job.Greeting
	if greeting == "" {
		greeting = "Welcome, " + job.FullName + "!"
	}
	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, map[string]string{"FullName": job.FullName, "Greeting": greeting}); err != nil {
		return "", "", "", err
	}
	text = greeting + "\n\nYour account is ready. You can sign in with your email or with Google at any time."
	return welcomeSubject, text, buf.String(), nil
}
