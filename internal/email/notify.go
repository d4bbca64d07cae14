package email

import (
	"context"
	"fmt"
	"html/template"

	"estatewatch/internal/visitor"
)

const notifySubject = "Visitor access code for %s"

const notifyBody = `<p>Hello,</p>
<p>You have pre-authorized <strong>%s</strong> for a visit on %s.</p>
<p>Access code: <strong>%s</strong></p>
<p>Give this code to your visitor; security will ask for it at the gate.</p>`

// AccessCodeNotifier implements visitor.Notifier over the SMTP client.
type AccessCodeNotifier struct {
	client *Client
}

func NewAccessCodeNotifier(client *Client) *AccessCodeNotifier {
	return &AccessCodeNotifier{client: client}
}

func (n *AccessCodeNotifier) AccessCodeIssued(ctx context.Context, v visitor.Visitor, recipient string) error {
	msg := &Message{
		To:      []string{recipient},
		Subject: fmt.Sprintf(notifySubject, template.HTMLEscapeString(v.Name)),
		HTML: fmt.Sprintf(notifyBody,
			template.HTMLEscapeString(v.Name),
			v.VisitDate.Format("Jan 2, 2006"),
			template.HTMLEscapeString(v.AccessCode),
		),
	}
	return n.client.Send(msg)
}
