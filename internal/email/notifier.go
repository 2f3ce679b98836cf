package email

import (
	"fmt"
	"strings"
	"time"
)

// Notifier composes and sends the share-related notification mails
type Notifier struct {
	sender *Sender
	appURL string
}

// NewNotifier creates a notifier on top of an SMTP sender. appURL is the
// public base URL used to build share links.
func NewNotifier(sender *Sender, appURL string) *Notifier {
	return &Notifier{
		sender: sender,
		appURL: strings.TrimRight(appURL, "/"),
	}
}

// Enabled reports whether notification mails can be sent at all
func (n *Notifier) Enabled() bool {
	return n.sender != nil && n.sender.IsConfigured()
}

// NotifyRecipient tells a recipient that a share is ready for them
func (n *Notifier) NotifyRecipient(to, shareID, creatorID, description string, expiresAt *time.Time) error {
	sender := creatorID
	if sender == "" {
		sender = "Someone"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi,\n\n%s shared some files with you.\n\n", sender)
	if description != "" {
		fmt.Fprintf(&sb, "Note from the sender:\n%s\n\n", description)
	}
	fmt.Fprintf(&sb, "View the share here: %s\n\n", n.shareLink(shareID))
	if expiresAt != nil {
		fmt.Fprintf(&sb, "The share expires on %s.\n", expiresAt.Format("January 2, 2006 at 15:04 MST"))
	} else {
		sb.WriteString("The share does not expire.\n")
	}

	return n.sender.Send([]string{to}, "Files shared with you", sb.String())
}

// NotifyReverseShareCreator tells the sender of an invitation that someone
// uploaded a share through it
func (n *Notifier) NotifyReverseShareCreator(to, shareID string) error {
	body := fmt.Sprintf(
		"Hi,\n\nsomeone used your upload invitation and created the share %s.\n\nView it here: %s\n",
		shareID, n.shareLink(shareID),
	)
	return n.sender.Send([]string{to}, "A share was created for you", body)
}

func (n *Notifier) shareLink(shareID string) string {
	return n.appURL + "/s/" + shareID
}
