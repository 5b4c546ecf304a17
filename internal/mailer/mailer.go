package mailer

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"mihari/internal/config"
	"mihari/internal/episode"
	"mihari/internal/util"

	"github.com/PuerkitoBio/goquery"
	mail "github.com/wneessen/go-mail"
)

const airDateLayout = "2006-01-02"

// defaultTemplate is used when email.template does not point at a custom
// HTML body template.
const defaultTemplate = `<html>
  <body>
    <h2>🔥 New {{.Show}} Episode: {{.Code}}</h2>
    <p><b>{{.Title}}</b></p>
    <p>Aired: {{.AirDate}}</p>
    {{if .Summary}}<p>{{.Summary}}</p>{{end}}
  </body>
</html>
`

type templateData struct {
	Show    string
	Code    string
	Title   string
	Season  int
	Episode int
	AirDate string
	Summary string
}

// Mailer sends one new-episode notification to every configured
// recipient over STARTTLS SMTP.
type Mailer struct {
	cfg    config.Config
	tmpl   *template.Template
	logger *log.Logger
}

func New(cfg config.Config, appLogger *log.Logger) (*Mailer, error) {
	if appLogger == nil {
		appLogger = log.Default()
	}
	body := defaultTemplate
	if cfg.Email.TemplatePath != "" {
		raw, err := os.ReadFile(cfg.Email.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading email template %s: %w", cfg.Email.TemplatePath, err)
		}
		body = string(raw)
	}
	tmpl, err := template.New("email").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing email template: %w", err)
	}
	return &Mailer{cfg: cfg, tmpl: tmpl, logger: appLogger}, nil
}

func (m *Mailer) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m.logger = logger
}

// Subject builds the notification subject line, e.g.
// "🔥 New episode: Family Guy S05E11".
func Subject(show string, ep episode.Record) string {
	return fmt.Sprintf("🔥 New episode: %s %s", show, ep.Code())
}

// PlainSummary flattens the API's HTML summary fragment ("<p>…</p>") to
// plain text. Malformed fragments fall back to the raw input.
func PlainSummary(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}

// Render produces the plain-text and HTML bodies for ep.
func (m *Mailer) Render(ep episode.Record) (plain string, html string, err error) {
	data := templateData{
		Show:    m.cfg.TVShow.Name,
		Code:    ep.Code(),
		Title:   ep.Title,
		Season:  ep.Season,
		Episode: ep.Number,
		AirDate: ep.AirDate.Format(airDateLayout),
		Summary: PlainSummary(ep.Summary),
	}

	var sb strings.Builder
	if err := m.tmpl.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("rendering email body: %w", err)
	}
	html = sb.String()

	lines := []string{
		fmt.Sprintf("New %s episode: %s", data.Show, data.Code),
		fmt.Sprintf("Title: %s", data.Title),
		fmt.Sprintf("Airdate: %s", data.AirDate),
	}
	if data.Summary != "" {
		lines = append(lines, "", data.Summary)
	}
	plain = strings.Join(lines, "\n") + "\n"
	return plain, html, nil
}

// Send delivers the notification for ep, one message addressed to the
// whole recipient list. With dryRun set it only logs what would go out.
func (m *Mailer) Send(ep episode.Record, dryRun bool) error {
	subject := Subject(m.cfg.TVShow.Name, ep)
	actionMsg := fmt.Sprintf("  %s Sending %s to %d recipient(s)...",
		util.Cyan("[MAIL]"), util.Blue(fmt.Sprintf("'%s'", subject)), len(m.cfg.Email.To))
	if dryRun {
		m.logger.Printf("%s %s", actionMsg, util.YellowBold("(DRY RUN)"))
		return nil
	}

	plain, html, err := m.Render(ep)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Email.Username); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.cfg.Email.Username, err)
	}
	if err := msg.To(m.cfg.Email.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plain)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(m.cfg.Email.SMTPServer,
		mail.WithPort(m.cfg.Email.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Email.Username),
		mail.WithPassword(m.cfg.Email.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(time.Duration(m.cfg.Email.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("building SMTP client for %s: %w", m.cfg.Email.SMTPServer, err)
	}

	m.logger.Printf("%s", actionMsg)
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending via %s:%d: %w", m.cfg.Email.SMTPServer, m.cfg.Email.SMTPPort, err)
	}
	m.logger.Printf("    └─ %s Status: %s", util.Cyan("[MAIL]"), util.Green("Sent"))
	return nil
}
