package ingest

import (
	"regexp"
	"strings"
)

// DefaultModel is stored when a product name carries no recognizable size, CPU or capacity token.
const DefaultModel = "Padrão"

// Screen sizes (15.6"), Intel CPU families and storage/memory capacities.
var reModelToken = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?(?:''|["'` + "`" + `´”″])|\bi[3579]\b|\d+(?:GB|TB)`)

func ExtractModel(name string) string {
	tokens := reModelToken.FindAllString(name, -1)
	if len(tokens) == 0 {
		return DefaultModel
	}
	return strings.Join(tokens, " ")
}
