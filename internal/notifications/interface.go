package notifications

import "github.com/brandpulse/mentions-bot/internal/models"

// Notifier defines the contract for out-of-band spike alert delivery.
type Notifier interface {
	SendSpikeAlert(alert *models.SpikeAlert) error
}
