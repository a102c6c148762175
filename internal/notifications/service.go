package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/brandpulse/mentions-bot/internal/config"
	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers spike alerts via the configured channels. Channels are
// independent: one failing does not stop the other.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card.
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Enabled reports whether any delivery channel is configured.
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendSpikeAlert delivers the alert via every configured channel.
func (s *Service) SendSpikeAlert(alert *models.SpikeAlert) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(alert); err != nil {
			logrus.Errorf("Failed to send Teams alert: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent spike alert to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(alert); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent spike alert via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(alert *models.SpikeAlert) error {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   "Brand Mention Volume Spike",
		Text:    alert.Message,
		Sections: []TeamsSection{
			{
				ActivityTitle: "Details",
				Facts: []TeamsFact{
					{Name: "Detected", Value: alert.Timestamp.Format("2006-01-02 15:04:05 UTC")},
					{Name: "Type", Value: alert.Type},
				},
				Markdown: true,
			},
		},
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(alert *models.SpikeAlert) error {
	subject := "Brand mention volume spike detected"

	body := fmt.Sprintf("%s\n\nDetected: %s\n\nThis alert was generated automatically by the brand mentions bot.\n",
		alert.Message, alert.Timestamp.Format("2006-01-02 15:04:05 UTC"))

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
