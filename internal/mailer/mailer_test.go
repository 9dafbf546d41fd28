package mailer

import (
	"context"
	"testing"

	"bakery-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWithoutHostLogsOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(config.MailConfig{}, zap.New(core))

	require.IsType(t, &LogMailer{}, m)

	err := m.Send(context.Background(), Message{
		To:      []string{"operador@padaria.local"},
		Subject: "Nova solicitação",
		Body:    "código ABCD2345",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("Email (not sent, SMTP disabled)").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Nova solicitação", entries[0].ContextMap()["subject"])
}

func TestNewWithHost(t *testing.T) {
	m := New(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "loja@example.com"}, zap.NewNop())

	smtp, ok := m.(*SMTPMailer)
	require.True(t, ok)

	gm, err := smtp.build(Message{To: []string{"a@example.com", "b@example.com"}, Subject: "Oi", Body: "corpo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"loja@example.com"}, gm.GetHeader("From"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gm.GetHeader("To"))
}

func TestSendWithoutRecipients(t *testing.T) {
	m := New(config.MailConfig{}, zap.NewNop())

	err := m.Send(context.Background(), Message{Subject: "x"})

	assert.ErrorIs(t, err, ErrNoRecipients)
}
