// Package discovery turns saved supplier and crawler payloads into
// discovered products ready for ingestion.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

var ErrUnsupportedFormat = errors.New("unsupported discovery format")

// Extensions lists the file types Load understands.
var Extensions = []string{".json", ".xlsx", ".html", ".htm", ".eml", ".pdf"}

func LoadFile(path string) ([]internal.DiscoveredProduct, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(filepath.Base(path), blob)
}

// Load parses content according to the extension of name.
func Load(name string, content []byte) ([]internal.DiscoveredProduct, error) {
	var (
		items []internal.DiscoveredProduct
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		items, err = parseJSON(content)
	case ".xlsx":
		items, err = parseXLSX(content)
	case ".html", ".htm":
		items, err = parseHTML(string(content))
	case ".eml":
		items, err = parseEML(content)
	case ".pdf":
		items, err = parsePDF(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return dropBlankNames(items), nil
}

// Supported reports whether Load accepts name.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func dropBlankNames(items []internal.DiscoveredProduct) []internal.DiscoveredProduct {
	out := make([]internal.DiscoveredProduct, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
