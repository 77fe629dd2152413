package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
)

type Connector struct {
	service *gmail.Service
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	for name, value := range map[string]string{
		"GMAIL_CLIENT_ID":     cfg.GmailClientID,
		"GMAIL_CLIENT_SECRET": cfg.GmailClientSecret,
		"GMAIL_REFRESH_TOKEN": cfg.GmailRefreshToken,
	} {
		if err := cfg.Require(name, value); err != nil {
			return nil, err
		}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc}, nil
}

// FetchInbox lists up to max messages carrying label. The read-only scope
// cannot mark messages as read; the inbox dropper skips repeats by hash.
func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.MailMessage, error) {
	listResp, err := c.service.Users.Messages.List("me").LabelIds(label).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.MailMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		if ref.Id == "" {
			continue
		}

		rawResp, err := c.service.Users.Messages.Get("me", ref.Id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		if rawResp.Raw == "" {
			continue
		}
		raw, err := decodeBase64URL(rawResp.Raw)
		if err != nil {
			return nil, err
		}

		metaResp, err := c.service.Users.Messages.Get("me", ref.Id).Format("metadata").
			MetadataHeaders("Subject", "From", "Message-ID").Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		headers := map[string]string{}
		if metaResp.Payload != nil {
			for _, h := range metaResp.Payload.Headers {
				headers[strings.ToLower(h.Name)] = h.Value
			}
		}

		messageID := headers["message-id"]
		if messageID == "" {
			messageID = ref.Id
		}
		out = append(out, internal.MailMessage{
			Provider:  "gmail",
			MessageID: messageID,
			From:      headers["from"],
			Subject:   headers["subject"],
			Raw:       raw,
		})
	}
	return out, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
