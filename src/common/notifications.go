package common

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"swimops/src/lib"
	"swimops/src/lib/mailer"
	"swimops/src/models"
	"swimops/src/utils"

	"github.com/tidwall/gjson"
)

type parentNotice struct {
	Email    string
	Name     string
	Swimmers []string
}

// groupParents folds bookings into one notice per parent so a family with
// two swimmers in the block gets a single email.
func groupParents(bookings []models.Booking) []parentNotice {
	index := map[string]*parentNotice{}
	var order []string
	for i := range bookings {
		b := &bookings[i]
		email := b.Parent.Email
		if email == "" {
			continue
		}
		notice, ok := index[email]
		if !ok {
			notice = &parentNotice{Email: email, Name: b.Parent.FullName}
			index[email] = notice
			order = append(order, email)
		}
		name := b.Swimmer.FullName()
		dup := false
		for _, s := range notice.Swimmers {
			if s == name {
				dup = true
				break
			}
		}
		if !dup {
			notice.Swimmers = append(notice.Swimmers, name)
		}
	}
	out := make([]parentNotice, 0, len(order))
	for _, email := range order {
		out = append(out, *index[email])
	}
	return out
}

// NotifySessionCancellation emails each affected parent once. Returns the
// number of parents notified.
func NotifySessionCancellation(session *models.Session, bookings []models.Booking, reason string) int {
	notices := groupParents(bookings)
	senderFrom := os.Getenv("SMTP_FROM")
	when := session.StartTime.Format("Monday, January 2 at 3:04 PM")
	for _, notice := range notices {
		input := &lib.SendMailInput{
			Subject:  "Swim lesson cancelled",
			From:     senderFrom,
			FromName: "Aqua Patio Swim School",
			To:       []string{notice.Email},
			Body: fmt.Sprintf(`
				<p>Hi %s,</p>
				<p>The swim lesson for <b>%s</b> on %s has been cancelled.</p>
				<p>Reason: %s</p>
				<p>We will reach out to reschedule. This is a system-generated message. Do not reply to this email.</p>
				`,
				notice.Name,
				strings.Join(notice.Swimmers, ", "),
				when,
				reason,
			),
			Html: true,
		}
		if err := mailer.NewMailerMessage(input); err != nil {
			log.Printf("[mailer] Error sending cancellation to %s: %s\n", notice.Email, err.Error())
		}
	}
	return len(notices)
}

// NotifyInstructorChange tells each parent who will be teaching instead.
func NotifyInstructorChange(session *models.Session, bookings []models.Booking, newInstructor *models.Profile) int {
	notices := groupParents(bookings)
	senderFrom := os.Getenv("SMTP_FROM")
	when := session.StartTime.Format("Monday, January 2 at 3:04 PM")
	for _, notice := range notices {
		input := &lib.SendMailInput{
			Subject:  "Swim lesson instructor change",
			From:     senderFrom,
			FromName: "Aqua Patio Swim School",
			To:       []string{notice.Email},
			Body: fmt.Sprintf(`
				<p>Hi %s,</p>
				<p>The swim lesson for <b>%s</b> on %s will be taught by <b>%s</b>.</p>
				<p>Everything else about the lesson is unchanged.</p>
				<p>This is a system-generated message. Do not reply to this email.</p>
				`,
				notice.Name,
				strings.Join(notice.Swimmers, ", "),
				when,
				newInstructor.FullName,
			),
			Html: true,
		}
		if err := mailer.NewMailerMessage(input); err != nil {
			log.Printf("[mailer] Error sending instructor change to %s: %s\n", notice.Email, err.Error())
		}
	}
	return len(notices)
}

// KafkaEmailsToSendConsumer drains the queued emails produced by the mailer
// in local mode.
func KafkaEmailsToSendConsumer(spayload string) {
	if !gjson.Valid(spayload) {
		log.Println("[emails]: Received invalid json body. Aborting")
		return
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(spayload), &payload); err != nil {
		log.Printf("[emails] Error deserializing JSON: %s\n", err.Error())
		return
	}
	input := &lib.SendMailInput{
		From:     gjson.Get(spayload, "from").String(),
		FromName: gjson.Get(spayload, "from-name").String(),
		ReplyTo:  gjson.Get(spayload, "reply-to").String(),
		Subject:  gjson.Get(spayload, "subject").String(),
		Body:     gjson.Get(spayload, "body").String(),
		Html:     gjson.Get(spayload, "html").Bool(),
	}
	for _, v := range gjson.Get(spayload, "to").Array() {
		input.To = append(input.To, v.String())
	}
	for _, v := range gjson.Get(spayload, "cc").Array() {
		input.Cc = append(input.Cc, v.String())
	}
	for _, v := range gjson.Get(spayload, "bcc").Array() {
		input.Bcc = append(input.Bcc, v.String())
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[emails] Error sending mail: %s\n", err.Error())
	}
}

func EmailsToSendConsumer() {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	lib.KafkaConsume(utils.WithSuffix(emailQueue), "swimops", KafkaEmailsToSendConsumer)
}
