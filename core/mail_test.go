package core

import (
	"bytes"
	"encoding/base64"
	"net/mail"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/academia/fs"
)

func TestEmailMessage_Render(t *testing.T) {
	frontendBaseURL = "https://academia.test"
	require.NoError(t, parseTemplates(appfs.FS, true))

	data := struct {
		Name         string
		CategoryName string
		EarnedAt     time.Time
	}{Name: "Awe", CategoryName: "Go", EarnedAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}

	t.Run("templated", func(t *testing.T) {
		msg := &EmailMessage{
			To:           []mail.Address{{Name: "Awe", Address: "awe@test.cd"}},
			Subject:      "Your certificate",
			TemplateName: "certificate",
			TemplateData: data,
		}
		require.NoError(t, msg.Render())

		assert.True(t, msg.HasRecipients())
		assert.True(t, msg.HasContent())
		assert.Contains(t, msg.TextContent, `every lesson of "Go" on March 10, 2024`)
		assert.Contains(t, msg.TextContent, "https://academia.test/dashboard/certificates")
		assert.Contains(t, msg.HTMLContent, "<strong>Go</strong>")
		assert.Contains(t, msg.HTMLContent, `href="https://academia.test"`)
	})

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{BodyStr: "hello"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.False(t, msg.HasRecipients())
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "lol"}
		require.NoError(t, msg.Render())
		assert.False(t, msg.HasContent())
	})

	t.Run("missing data", func(t *testing.T) {
		msg := &EmailMessage{TemplateName: "certificate", TemplateData: map[string]string{}}
		assert.Error(t, msg.Render())
	})
}

func Test_parseTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/email/_base.txt":    {Data: []byte(`{{template "content" .}}`)},
		"templates/email/_base.gohtml": {Data: []byte(`<p>{{template "content" .}}</p>`)},
		"templates/email/ping.txt":     {Data: []byte(`{{define "content"}}ping {{.Data}}{{end}}`)},
		"templates/email/notes.md":     {Data: []byte(`ignored`)},
	}
	require.NoError(t, parseTemplates(fsys, false))

	msg := &EmailMessage{TemplateName: "ping", TemplateData: "pong"}
	require.NoError(t, msg.Render())
	assert.Equal(t, "ping pong", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
	assert.NotContains(t, templates, "notes")

	fsys["templates/email/broken.txt"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Data{{end}}`)}
	assert.Error(t, parseTemplates(fsys, false))
}

func TestEmailMessage_Attach(t *testing.T) {
	msg := new(EmailMessage)
	pdf := []byte("%PDF-1.4 certificate")

	require.NoError(t, msg.Attach(bytes.NewReader(pdf), "certificate.pdf"))
	require.NoError(t, msg.Attach(strings.NewReader("a,b"), "grades.csv", "text/csv"))
	require.True(t, msg.HasAttachments())
	require.Len(t, msg.Attachments, 2)

	at := msg.Attachments[0]
	assert.Equal(t, "certificate.pdf", at.Filename)
	assert.Equal(t, "application/pdf", at.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(at.Content.String())
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)

	assert.Equal(t, "text/csv", msg.Attachments[1].ContentType)
}
