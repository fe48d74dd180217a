package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier sends plain-text mail through the Gmail API as sender.
// It authenticates with a long-lived OAuth refresh token for that mailbox.
type GmailNotifier struct {
	svc    *gmail.Service
	sender string
}

var _ Notifier = (*GmailNotifier)(nil)

// NewGmailNotifier builds a Gmail client from OAuth client credentials and a refresh token.
func NewGmailNotifier(ctx context.Context, clientID, clientSecret, refreshToken, sender string) (*GmailNotifier, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("gmail notifier: client id, client secret and refresh token are required")
	}
	if sender == "" {
		return nil, fmt.Errorf("gmail notifier: sender address is required")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail notifier: create service: %w", err)
	}
	return &GmailNotifier{svc: svc, sender: sender}, nil
}

func (n *GmailNotifier) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(buildMIME(n.sender, msg))
	if _, err := n.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send to %s: %w", msg.To, err)
	}
	return nil
}

// buildMIME renders msg as an RFC 2822 message with a UTF-8 plain-text body.
func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
