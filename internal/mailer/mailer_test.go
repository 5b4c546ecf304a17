package mailer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mihari/internal/config"
	"mihari/internal/episode"
	"mihari/internal/mailer"
	"mihari/internal/tvmaze"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Email.SMTPServer = "smtp.example.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.Username = "sender@example.com"
	cfg.Email.Password = "hunter2"
	cfg.Email.To = []string{"alice@example.com"}
	cfg.Email.TimeoutSeconds = 5
	cfg.TVShow.Name = "Family Guy"
	return cfg
}

func testEpisode() episode.Record {
	aired, _ := time.Parse("2006-01-02", "2026-08-29")
	return episode.Record{
		Season:  5,
		Number:  11,
		Title:   "The Tan Aquatic",
		AirDate: aired,
		Summary: "<p>Stewie gets a tan.</p>",
	}
}

func TestSubjectMentionsShowAndEpisodeCode(t *testing.T) {
	subject := mailer.Subject("Family Guy", testEpisode())
	assert.Contains(t, subject, "Family Guy S05E11")
}

func TestPlainSummaryStripsHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph tags", "<p>Stewie gets a tan.</p>", "Stewie gets a tan."},
		{"nested markup", "<p>Peter meets <b>the Giant Chicken</b>.</p>", "Peter meets the Giant Chicken."},
		{"already plain", "Just text.", "Just text."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mailer.PlainSummary(tt.in))
		})
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	m, err := mailer.New(testConfig(), tvmaze.NilLogger)
	require.NoError(t, err)

	plain, html, err := m.Render(testEpisode())
	require.NoError(t, err)

	assert.Contains(t, plain, "Family Guy")
	assert.Contains(t, plain, "S05E11")
	assert.Contains(t, plain, "The Tan Aquatic")
	assert.Contains(t, plain, "2026-08-29")
	assert.Contains(t, plain, "Stewie gets a tan.")
	assert.NotContains(t, plain, "<p>")

	assert.Contains(t, html, "S05E11")
	assert.Contains(t, html, "The Tan Aquatic")
	assert.Contains(t, html, "2026-08-29")
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_template.html")
	require.NoError(t, os.WriteFile(path, []byte("<b>{{.Show}} {{.Code}}: {{.Title}}</b>"), 0o644))

	cfg := testConfig()
	cfg.Email.TemplatePath = path
	m, err := mailer.New(cfg, tvmaze.NilLogger)
	require.NoError(t, err)

	_, html, err := m.Render(testEpisode())
	require.NoError(t, err)
	assert.Equal(t, "<b>Family Guy S05E11: The Tan Aquatic</b>", html)
}

func TestNewRejectsMissingTemplateFile(t *testing.T) {
	cfg := testConfig()
	cfg.Email.TemplatePath = filepath.Join(t.TempDir(), "nope.html")
	_, err := mailer.New(cfg, tvmaze.NilLogger)
	require.Error(t, err)
}

func TestSendDryRunSendsNothing(t *testing.T) {
	cfg := testConfig()
	// Unroutable server: a real dial attempt would fail, a dry run
	// must not even try.
	cfg.Email.SMTPServer = "smtp.invalid"
	m, err := mailer.New(cfg, tvmaze.NilLogger)
	require.NoError(t, err)

	require.NoError(t, m.Send(testEpisode(), true))
}
