package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"

	"contact-intake-api/models"
)

// Notifier is told about every accepted submission.
type Notifier interface {
	SubmissionCreated(ctx context.Context, sub models.Submission) error
}

// NopNotifier does nothing.
type NopNotifier struct{}

func (NopNotifier) SubmissionCreated(context.Context, models.Submission) error { return nil }

// MailSender is satisfied by config.Mailer.
type MailSender interface {
	SendMail(to []string, subject, html string) error
}

// MailNotifier mails a summary of each new submission to a fixed list of
// recipients.
type MailNotifier struct {
	sender     MailSender
	recipients []string
}

func NewMailNotifier(sender MailSender, recipients []string) *MailNotifier {
	return &MailNotifier{sender: sender, recipients: recipients}
}

var submissionMailTemplate = template.Must(template.New("submission").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Nueva solicitud recibida</h2>
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Fecha:</strong> {{.Date}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    {{range .Fields}}<tr><td style="border: 1px solid #ddd;"><strong>{{.Key}}</strong></td><td style="border: 1px solid #ddd;">{{.Value}}</td></tr>
    {{end}}
  </table>
</body>
</html>`))

type mailField struct {
	Key   string
	Value string
}

func (n *MailNotifier) SubmissionCreated(_ context.Context, sub models.Submission) error {
	if len(n.recipients) == 0 {
		return nil
	}
	body, err := renderSubmissionMail(sub)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Nueva solicitud: %s", sub.FieldString(models.FieldName))
	return n.sender.SendMail(n.recipients, subject, body)
}

func renderSubmissionMail(sub models.Submission) (string, error) {
	keys := make([]string, 0, len(sub.Fields))
	for k := range sub.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]mailField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, mailField{Key: k, Value: fmt.Sprint(sub.Fields[k])})
	}

	var buf bytes.Buffer
	err := submissionMailTemplate.Execute(&buf, struct {
		ID     string
		Date   string
		Fields []mailField
	}{
		ID:     sub.ID,
		Date:   sub.SubmissionDate.UTC().Format(models.TimeLayout),
		Fields: fields,
	})
	if err != nil {
		return "", fmt.Errorf("render submission mail: %w", err)
	}
	return buf.String(), nil
}
