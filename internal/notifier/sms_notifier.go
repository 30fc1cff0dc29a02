package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	config "github.com/brenpaiva/ecommerce-store/configs"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SMSNotifier sends order confirmations through the Africa's Talking
// messaging API.
type SMSNotifier struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
}

func NewSMSNotifier(cfg config.AfricaTalkingConfig, client *http.Client) *SMSNotifier {
	if client == nil {
		client = &http.Client{}
	}
	return &SMSNotifier{cfg: cfg, client: client}
}

func (n *SMSNotifier) SendSMS(ctx context.Context, toPhoneNumber string, c Confirmation) error {
	data := url.Values{}
	data.Set("username", n.cfg.Username)
	data.Set("to", toPhoneNumber)
	data.Set("message", smsText(c))
	data.Set("from", n.cfg.SenderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("SMS send failed to %s for order %d: %v\n", toPhoneNumber, c.OrderID, err)
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var smsResp SMSResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp); decodeErr == nil {
			log.Printf("SMS API returned error for %s (order %d): Status %d, Message: %s\n", toPhoneNumber, c.OrderID, resp.StatusCode, smsResp.SMSMessageData.Message)
		} else {
			log.Printf("SMS API returned non-success status %d for %s (order %d) and failed to decode response: %v\n", resp.StatusCode, toPhoneNumber, c.OrderID, decodeErr)
		}
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}

	var smsResp SMSResponse
	if err := json.NewDecoder(resp.Body).Decode(&smsResp); err != nil {
		log.Printf("Failed to decode SMS response for %s (order %d): %v\n", toPhoneNumber, c.OrderID, err)
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}

	log.Printf("SMS sent successfully to %s for order %d. Message: %s\n", toPhoneNumber, c.OrderID, smsResp.SMSMessageData.Message)
	return nil
}
