package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
)

// InboxDropper writes messages from known suppliers into the listener inbox
// as "<supplierId>_<hash>.eml". Senders are matched by full address first,
// then by "@domain".
type InboxDropper struct {
	inbox     string
	suppliers map[string]int64
	log       logger.Logger
}

func NewInboxDropper(inbox string, suppliers map[string]int64, log logger.Logger) *InboxDropper {
	return &InboxDropper{inbox: inbox, suppliers: suppliers, log: log}
}

// Drop reports false for senders that map to no supplier. Re-dropping the
// same message is a no-op.
func (d *InboxDropper) Drop(msg internal.MailMessage) (bool, error) {
	supplierID, ok := d.supplierFor(msg.From)
	if !ok {
		d.log.Debug("mail from unknown sender skipped",
			logger.String("from", msg.From),
			logger.String("message_id", msg.MessageID),
		)
		return false, nil
	}

	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(d.inbox, 0o755); err != nil {
		return false, err
	}

	name := fmt.Sprintf("%d_%s.eml", supplierID, hash[:16])
	path := filepath.Join(d.inbox, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, msg.Raw, 0o644); err != nil {
			return false, err
		}
	}

	d.log.Info("supplier mail dropped",
		logger.String("file", name),
		logger.Int64("supplier_id", supplierID),
		logger.String("subject", msg.Subject),
	)
	return true, nil
}

func (d *InboxDropper) supplierFor(from string) (int64, bool) {
	addr := senderAddress(from)
	if addr == "" {
		return 0, false
	}
	if id, ok := d.suppliers[addr]; ok {
		return id, true
	}
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		if id, ok := d.suppliers[addr[at:]]; ok {
			return id, true
		}
	}
	return 0, false
}

func senderAddress(from string) string {
	if parsed, err := mail.ParseAddress(from); err == nil {
		return strings.ToLower(parsed.Address)
	}
	return strings.ToLower(strings.TrimSpace(from))
}
