package mailer

import (
	"context"

	mailtpl "github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

// Deliver renders the job's template, if any, and hands the result to s.
// Render failures are permanent; send failures may be retried by the caller.
func Deliver(ctx context.Context, s Sender, job EmailJob) (permanent bool, err error) {
	if err := job.Validate(); err != nil {
		return true, err
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		data := job.Data
		if data == nil {
			data = map[string]any{}
		}
		if _, ok := data["Email"]; !ok {
			data["Email"] = job.To
		}
		subject, text, html, err = mailtpl.Render(job.Template, data)
		if err != nil {
			return true, err
		}
	}
	if err := s.Send(ctx, job.To, subject, text, html); err != nil {
		return false, err
	}
	return false, nil
}
