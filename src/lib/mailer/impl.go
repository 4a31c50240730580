package mailer

import (
	"fmt"
	"os"

	"swimops/src/lib"
	"swimops/src/types"
	"swimops/src/utils"
)

// NewMailerMessage queues an email on the broker in local mode so handlers
// never block on SMTP; otherwise it sends directly.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	apiEnv := os.Getenv("API_ENV")
	emailBody := types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"cc":        input.Cc,
		"bcc":       input.Bcc,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	if apiEnv == string(types.Local) {
		if err := lib.KafkaProduceMessage("emails", utils.WithSuffix(emailQueue), emailBody); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	if err := lib.SendMail(input); err != nil {
		return fmt.Errorf("error sending mail: %s", err.Error())
	}
	return nil
}
