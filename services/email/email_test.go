package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
)

func TestConsoleServiceMock(t *testing.T) {
	ResetSentMessages()
	svc := NewConsoleServiceMock(core.NewTestConfig())

	withBody := &core.EmailMessage{
		To:      []mail.Address{{Name: "Phụ huynh", Address: "parent@example.com"}},
		Subject: "Lịch học",
		BodyStr: "Xin chào",
	}
	noRecipient := &core.EmailMessage{Subject: "skipped", BodyStr: "nobody"}
	noContent := &core.EmailMessage{To: []mail.Address{{Address: "x@example.com"}}, Subject: "empty"}
	require.NoError(t, withBody.Attach(strings.NewReader("%PDF-1.4"), "menu.pdf", "application/pdf"))

	svc.SendMessages(withBody, noRecipient, noContent)

	sent := Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "Lịch học", sent[0].Subject)
		assert.Equal(t, "Xin chào", sent[0].TextContent)
		assert.Len(t, sent[0].Attachments, 1)
	}
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, nil).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Address: "a@example.com"}},
		Cc:          []mail.Address{{Address: "b@example.com"}},
		Subject:     "Hello",
		TextContent: "text",
	})
	if assert.Len(t, m.Personalizations, 1) {
		assert.Equal(t, "[SchoolOps] Hello", m.Personalizations[0].Subject)
		assert.Len(t, m.Personalizations[0].To, 1)
		assert.Len(t, m.Personalizations[0].CC, 1)
	}
	assert.Len(t, m.Content, 1)
	assert.Equal(t, "noreply@localhost", m.From.Address)
}
