// Package connectors pulls supplier price e-mails from a mailbox and drops
// them into the listener inbox.
package connectors

import (
	"context"
	"fmt"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

const (
	ProviderIMAP  = "imap"
	ProviderGmail = "gmail"
)

type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.MailMessage, error)
}

type FetchService struct {
	connector MailConnector
	dropper   *InboxDropper
	label     string
	max       int
}

type FetchResult struct {
	Fetched   int
	Dropped   int
	Unmatched int
}

func NewFetchService(connector MailConnector, dropper *InboxDropper, label string, max int) *FetchService {
	return &FetchService{connector: connector, dropper: dropper, label: label, max: max}
}

func (s *FetchService) FetchAndDrop(ctx context.Context) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, s.label, s.max)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch %s: %w", s.label, err)
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		dropped, err := s.dropper.Drop(msg)
		if err != nil {
			return res, err
		}
		if dropped {
			res.Dropped++
		} else {
			res.Unmatched++
		}
	}
	return res, nil
}
