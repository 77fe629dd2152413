package discovery

import (
	"strings"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

type columns struct {
	name, price, description, image, url, category int
}

var (
	nameAliases        = []string{"nome", "name", "produto", "product", "artigo", "designacao", "item"}
	priceAliases       = []string{"preco", "price", "valor", "pvp", "custo"}
	descriptionAliases = []string{"descricao", "description", "detalhe", "especificac"}
	imageAliases       = []string{"imagem", "image", "img", "foto"}
	urlAliases         = []string{"url", "link", "href"}
	categoryAliases    = []string{"categoria", "category", "familia"}
)

func normalizeHeader(h string) string {
	return strings.ToLower(util.FoldAccents(util.NormalizeSpaces(h)))
}

// inferColumns maps header cells to product fields. Specific columns are
// claimed first so "image_url" is not taken for the product link and
// "descrição do produto" is not taken for the name.
func inferColumns(headers []string) columns {
	norm := make([]string, 0, len(headers))
	for _, h := range headers {
		norm = append(norm, normalizeHeader(h))
	}

	used := map[int]bool{}
	pick := func(aliases []string) int {
		for i, h := range norm {
			if used[i] || h == "" {
				continue
			}
			for _, p := range aliases {
				if strings.Contains(h, p) {
					used[i] = true
					return i
				}
			}
		}
		return -1
	}

	c := columns{}
	c.image = pick(imageAliases)
	c.description = pick(descriptionAliases)
	c.price = pick(priceAliases)
	c.category = pick(categoryAliases)
	c.url = pick(urlAliases)
	c.name = pick(nameAliases)
	return c
}

// found reports whether a header row was recognised: a name column plus at
// least one other known column.
func (c columns) found() bool {
	if c.name < 0 {
		return false
	}
	return c.price >= 0 || c.description >= 0 || c.image >= 0 || c.url >= 0 || c.category >= 0
}

func defaultColumns() columns {
	return columns{name: 0, price: 1, description: -1, image: -1, url: -1, category: -1}
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

func (c columns) product(cells []string) internal.DiscoveredProduct {
	return internal.DiscoveredProduct{
		Name:        pickCell(cells, c.name),
		Price:       util.OptionalString(pickCell(cells, c.price)),
		Description: util.OptionalString(pickCell(cells, c.description)),
		ImageURL:    util.OptionalString(pickCell(cells, c.image)),
		ProductURL:  util.OptionalString(pickCell(cells, c.url)),
		Category:    util.OptionalString(pickCell(cells, c.category)),
	}
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeSpaces(c))
	}
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
