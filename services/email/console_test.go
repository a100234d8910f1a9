package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:         "Fastbreak",
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromName: "Fastbreak Camps",
		DefaultFromAddr: "noreply@localhost",
	}
}

func TestConsoleServiceSend(t *testing.T) {
	svc, ok := NewConsoleService(testConfig()).(*consoleService)
	require.True(t, ok)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	svc.send(core.EmailMessage{
		To:          []mail.Address{{Name: "Jane Doe", Address: "jane@example.test"}},
		Cc:          []mail.Address{{Address: "coach@example.test"}},
		Subject:     "Practice schedule",
		TextContent: "See you Saturday.",
	})

	out := buf.String()
	assert.Contains(t, out, `From: "Fastbreak Camps" <noreply@localhost>`)
	assert.Contains(t, out, "Subject: [Fastbreak] Practice schedule")
	assert.Contains(t, out, `To: "Jane Doe" <jane@example.test>`)
	assert.Contains(t, out, "CC: <coach@example.test>")
	assert.Contains(t, out, "See you Saturday.")
}

func TestConsoleServiceMockRecords(t *testing.T) {
	ClearSentMessages()
	svc := NewConsoleServiceMock(testConfig())

	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "Jane Doe", Address: "jane@example.test"}},
		Subject:      "Welcome to Fastbreak",
		TemplateName: "welcome",
		TemplateData: struct{ FullName string }{"Jane Doe"},
	})

	require.Len(t, SentMessages, 1)
	assert.Equal(t, "Welcome to Fastbreak", SentMessages[0].Subject)
	assert.Contains(t, SentMessages[0].TextContent, "Jane Doe")
}
