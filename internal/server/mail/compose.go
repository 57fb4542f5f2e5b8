package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Composer renders the show's transactional emails.
type Composer struct {
	EventName     string
	Currency      string
	PublicBaseURL string
}

type pageData struct {
	EventName    string
	Registration *models.Registration
	Sponsor      *models.Sponsor
	Admin        *models.Admin
	AdminName    string
	Amount       string
	Link         string
	Expires      string
	Paragraphs   []string
}

func (c Composer) render(name string, data pageData) (string, error) {
	data.EventName = c.EventName

	t, err := templates.Clone()
	if err != nil {
		return "", err
	}
	content := t.Lookup(name + "/content")
	if content == nil {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	if _, err := t.AddParseTree("content", content.Tree); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (c Composer) link(path string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + path
}

func (c Composer) Confirmation(r *models.Registration) (Message, error) {
	html, err := c.render("confirmation", pageData{Registration: r, Amount: FormatCents(r.AmountPaid, c.Currency)})
	if err != nil {
		return Message{}, err
	}
	id := r.ID
	return Message{
		To:             r.Email,
		Subject:        fmt.Sprintf("You're registered for %s (car #%d)", c.EventName, r.CarNumber),
		HTML:           html,
		Type:           models.EmailConfirmation,
		RegistrationID: &id,
	}, nil
}

func (c Composer) AdminNotification(r *models.Registration, admin *models.Admin) (Message, error) {
	html, err := c.render("admin_notification", pageData{
		Registration: r,
		AdminName:    admin.Name,
		Amount:       FormatCents(r.AmountPaid, c.Currency),
		Link:         c.link("/admin/registrations/" + r.ID),
	})
	if err != nil {
		return Message{}, err
	}
	id := r.ID
	return Message{
		To:             admin.Email,
		Subject:        fmt.Sprintf("New registration: #%d %s", r.CarNumber, r.VehicleName()),
		HTML:           html,
		Type:           models.EmailAdminNotification,
		RegistrationID: &id,
	}, nil
}

// Announcement turns a plain-text body into paragraphs split on blank lines.
func (c Composer) Announcement(subject, body string, r *models.Registration) (Message, error) {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	html, err := c.render("announcement", pageData{Registration: r, Paragraphs: paragraphs})
	if err != nil {
		return Message{}, err
	}
	id := r.ID
	return Message{
		To:             r.Email,
		Subject:        subject,
		HTML:           html,
		Type:           models.EmailAnnouncement,
		RegistrationID: &id,
	}, nil
}

func (c Composer) SponsorNotification(s *models.Sponsor, admin *models.Admin) (Message, error) {
	html, err := c.render("sponsor_notification", pageData{
		Sponsor:   s,
		AdminName: admin.Name,
		Link:      c.link("/admin/sponsors/" + s.ID),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      admin.Email,
		Subject: "Sponsorship inquiry: " + s.CompanyName,
		HTML:    html,
		Type:    models.EmailSponsorNotification,
	}, nil
}

// Invite links to the invite landing page; code is already opaque.
func (c Composer) Invite(admin *models.Admin, code string, expires time.Time) (Message, error) {
	html, err := c.render("invite", pageData{
		Admin:   admin,
		Link:    c.link("/invite/" + code),
		Expires: expires.UTC().Format("Jan 2, 2006 15:04 MST"),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      admin.Email,
		Subject: "You're invited to the " + c.EventName + " dashboard",
		HTML:    html,
		Type:    models.EmailInvite,
	}, nil
}
