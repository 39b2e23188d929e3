package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageValidation(t *testing.T) {
	_, err := buildMessage("", Message{To: []string{"a@b.pt"}, Subject: "s", TextBody: "t"})
	assert.ErrorAs(t, err, &ErrInvalidMessage{})

	_, err = buildMessage("x@y.pt", Message{To: []string{" "}, Subject: "s", TextBody: "t"})
	assert.ErrorAs(t, err, &ErrInvalidMessage{})

	_, err = buildMessage("x@y.pt", Message{To: []string{"a@b.pt"}, TextBody: "t"})
	assert.ErrorAs(t, err, &ErrInvalidMessage{})

	_, err = buildMessage("x@y.pt", Message{To: []string{"a@b.pt"}, Subject: "s"})
	assert.ErrorAs(t, err, &ErrInvalidMessage{})

	msg, err := buildMessage("x@y.pt", BuildWelcomeEmail("a@b.pt", "Ana"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.pt"}, msg.GetHeader("To"))
}

func TestDisabledClient(t *testing.T) {
	c := New(Config{Enabled: false, From: "x@y.pt"})
	err := c.Send(context.Background(), BuildWelcomeEmail("a@b.pt", "Ana"))
	assert.ErrorIs(t, err, ErrDisabled{})
	assert.False(t, c.Enabled())
}

func TestTemplatesEscapeNames(t *testing.T) {
	m := BuildPasswordChangedEmail("a@b.pt", "<b>Rui</b>")
	assert.Contains(t, m.HTMLBody, "&lt;b&gt;Rui&lt;/b&gt;")
	assert.Contains(t, m.TextBody, "<b>Rui</b>")

	m = BuildWelcomeEmail("a@b.pt", "")
	assert.Contains(t, m.TextBody, "Hi there,")
	assert.Equal(t, "Welcome to iEquus", m.Subject)
}
