package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medlab-api/internal/models"
)

const textbeltEndpoint = "https://textbelt.com/text"

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(*models.Order) {}

// SMSNotifier texts the patient an order confirmation through Textbelt.
type SMSNotifier struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOrderNotifier returns an SMS notifier, or a no-op one when no
// Textbelt key is configured.
func NewOrderNotifier(apiKey string) OrderNotifier {
	if apiKey == "" {
		return NopNotifier{}
	}
	return &SMSNotifier{
		apiKey:   apiKey,
		endpoint: textbeltEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// OrderPlaced sends the confirmation in the background so the request is
// never held up by the SMS gateway.
func (s *SMSNotifier) OrderPlaced(o *models.Order) {
	if o.Patient.Phone == "" {
		log.Debug().Str("orderNumber", o.OrderNumber).Msg("SMS not sent: order has no phone number")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, o.Patient.Phone, orderConfirmationText(o)); err != nil {
			log.Warn().Err(err).Str("orderNumber", o.OrderNumber).Msg("order confirmation SMS failed")
			return
		}
		log.Info().Str("orderNumber", o.OrderNumber).Msg("order confirmation SMS sent")
	}()
}

func orderConfirmationText(o *models.Order) string {
	return fmt.Sprintf(
		"Order %s confirmed: %s for %s on %s (%s).",
		o.OrderNumber,
		o.Test.Name,
		o.Patient.FullName,
		o.Appointment.PreferredDate.Format("Jan 2"),
		o.Appointment.PreferredTime,
	)
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *SMSNotifier) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
