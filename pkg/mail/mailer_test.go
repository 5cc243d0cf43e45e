package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	from string
	rcpt []string
	body bytes.Buffer

	quit   bool
	authed bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.from = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcpt = append(f.rcpt, to); return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.body}, nil
}
func (f *fakeSMTPClient) Quit() error                     { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                    { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error      { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error            { f.authed = true; return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string) { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newFakeMailer(cfg SMTPSettings, client *fakeSMTPClient) *smtpMailer {
	return &smtpMailer{
		cfg: cfg,
		dialFn: func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
			server, _ := net.Pipe()
			return server, client, nil
		},
		authFn: defaultAuthFunc,
	}
}

func TestSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@b.test"}, Subject: "hi"})
	assert.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidation(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	assert.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.test"})
	assert.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.test", Port: 587})
	assert.NoError(t, err)
}

func TestSendDeliversMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.test",
		Port:    587,
		From:    "no-reply@test.example",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"one@test.example", "one@test.example", "two@test.example"},
		Subject: "Greetings\r\nX-Injected: nope",
		Body:    "hello there",
	})
	require.NoError(t, err)

	assert.Equal(t, "no-reply@test.example", client.from)
	// Duplicate recipients are collapsed.
	assert.Equal(t, []string{"one@test.example", "two@test.example"}, client.rcpt)
	assert.True(t, client.quit)

	payload := client.body.String()
	assert.Contains(t, payload, "Subject: Greetings X-Injected: nope")
	assert.Contains(t, payload, "hello there")
	assert.NotContains(t, payload, "Subject: Greetings\r\nX-Injected")
}

func TestSendValidatesAddresses(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{Enabled: true, Host: "smtp.test", Port: 587, From: "no-reply@test.example"}, client)

	err := mailer.Send(context.Background(), Message{To: nil})
	assert.Error(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"not an address"}})
	assert.Error(t, err)
}
