package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridAPI interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier sends order confirmations through SendGrid.
type SendGridNotifier struct {
	client     sendgridAPI
	senderName string
	sender     string
}

func NewSendGridNotifier(apiKey, senderName, sender string) (*SendGridNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	return &SendGridNotifier{client: sendgrid.NewSendClient(apiKey), senderName: senderName, sender: sender}, nil
}

func (n *SendGridNotifier) SendEmail(_ context.Context, recipientEmail string, c Confirmation) error {
	if n.sender == "" {
		return fmt.Errorf("from address is empty")
	}
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(n.senderName, n.sender),
		subject(c),
		mail.NewEmail(c.CustomerName, recipientEmail),
		bodyText(c),
		bodyHTML(c),
	)

	response, err := n.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	log.Printf("[sendgrid] order %d confirmation sent: status=%d to=%s", c.OrderID, response.StatusCode, recipientEmail)
	return nil
}
