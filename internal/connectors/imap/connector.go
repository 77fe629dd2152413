package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
)

type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	markSeen bool
}

func NewConnector(cfg config.Config) (*Connector, error) {
	for name, value := range map[string]string{
		"IMAP_HOST":     cfg.IMAPHost,
		"IMAP_USER":     cfg.IMAPUser,
		"IMAP_PASSWORD": cfg.IMAPPassword,
	} {
		if err := cfg.Require(name, value); err != nil {
			return nil, err
		}
	}

	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		markSeen: cfg.IMAPMarkSeen,
	}, nil
}

// FetchInbox returns up to max unseen messages of the mailbox, newest last.
// The go-imap v1 client has no context support, so ctx is only checked
// between messages.
func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.MailMessage, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var (
		client *imapclient.Client
		err    error
	)
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if err := client.Login(c.user, c.password); err != nil {
		return nil, err
	}
	if _, err := client.Select(label, false); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := client.Search(criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if max > 0 && len(ids) > max {
		ids = ids[len(ids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([]internal.MailMessage, 0, len(ids))
	seen := make([]uint32, 0, len(ids))
	for msg := range messages {
		if msg == nil || ctx.Err() != nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}

		m := internal.MailMessage{Provider: "imap", Raw: raw}
		if msg.Envelope != nil {
			m.MessageID = msg.Envelope.MessageId
			m.Subject = msg.Envelope.Subject
			m.From = firstAddress(msg.Envelope.From)
		}
		if m.MessageID == "" {
			m.MessageID = fmt.Sprintf("imap-%d", msg.Uid)
		}
		out = append(out, m)
		seen = append(seen, msg.SeqNum)
	}

	if err := <-fetchDone; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.markSeen && len(seen) > 0 {
		set := new(imap.SeqSet)
		set.AddNum(seen...)
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := client.Store(set, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func firstAddress(addrs []*imap.Address) string {
	for _, a := range addrs {
		if a == nil || a.MailboxName == "" {
			continue
		}
		return a.MailboxName + "@" + a.HostName
	}
	return ""
}
