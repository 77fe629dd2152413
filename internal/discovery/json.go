package discovery

import (
	"bytes"
	"encoding/json"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

// crawlerItem also reads the Portuguese "categoria" key used by the search
// service.
type crawlerItem struct {
	internal.DiscoveredProduct
	Categoria *string `json:"categoria"`
}

type crawlerEnvelope struct {
	Products []crawlerItem `json:"products"`
	Produtos []crawlerItem `json:"produtos"`
}

// parseJSON accepts a bare array or a {"products": [...]} or
// {"produtos": [...]} envelope.
func parseJSON(content []byte) ([]internal.DiscoveredProduct, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []crawlerItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return fromCrawler(items), nil
	}

	var env crawlerEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return fromCrawler(append(env.Products, env.Produtos...)), nil
}

func fromCrawler(items []crawlerItem) []internal.DiscoveredProduct {
	out := make([]internal.DiscoveredProduct, 0, len(items))
	for _, item := range items {
		p := item.DiscoveredProduct
		if p.Category == nil {
			p.Category = item.Categoria
		}
		out = append(out, p)
	}
	return out
}
