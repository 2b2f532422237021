package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

func TestDeliver_Template(t *testing.T) {
	s := &fakeSender{}
	job := EmailJob{To: "jo@example.com", Template: mailtpl.Welcome, Data: map[string]any{"Name": "Jo", "AppName": "Users"}}

	permanent, err := Deliver(context.Background(), s, job)
	require.NoError(t, err)
	assert.False(t, permanent)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Welcome to Users, Jo", s.sent[0].subject)
	assert.Contains(t, s.sent[0].text, "jo@example.com")
}

func TestDeliver_Raw(t *testing.T) {
	s := &fakeSender{}
	_, err := Deliver(context.Background(), s, EmailJob{To: "a@b.com", Subject: "hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, sentMail{"a@b.com", "hi", "body", ""}, s.sent[0])
}

func TestDeliver_InvalidJob(t *testing.T) {
	permanent, err := Deliver(context.Background(), &fakeSender{}, EmailJob{Subject: "hi"})
	assert.True(t, permanent)
	assert.ErrorIs(t, err, ErrNoRecipient)

	permanent, err = Deliver(context.Background(), &fakeSender{}, EmailJob{To: "a@b.com"})
	assert.True(t, permanent)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestDeliver_UnknownTemplateIsPermanent(t *testing.T) {
	permanent, err := Deliver(context.Background(), &fakeSender{}, EmailJob{To: "a@b.com", Template: "missing"})
	assert.Error(t, err)
	assert.True(t, permanent)
}

func TestDeliver_SendFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	permanent, err := Deliver(context.Background(), &fakeSender{err: boom}, EmailJob{To: "a@b.com", Subject: "hi"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, permanent)
}
