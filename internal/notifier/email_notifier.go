package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/brenpaiva/ecommerce-store/configs"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends order confirmations through Amazon SES.
type SESNotifier struct {
	client      sesAPI
	senderEmail string
}

func NewSESNotifier(ctx context.Context, cfg config.EmailConfig) (*SESNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &SESNotifier{client: ses.NewFromConfig(awsCfg), senderEmail: cfg.SenderEmail}, nil
}

func (n *SESNotifier) SendEmail(ctx context.Context, recipientEmail string, c Confirmation) error {
	if n.senderEmail == "" {
		return fmt.Errorf("sender email address is not configured in environment variables")
	}
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.senderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{recipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject(c)),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML(c)),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText(c)),
				},
			},
		},
	}

	_, err := n.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("Failed to send email for order %d to %s: %v", c.OrderID, recipientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Order confirmation email sent successfully for order %d to %s", c.OrderID, recipientEmail)
	return nil
}
