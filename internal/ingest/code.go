package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

var reCodeNoise = regexp.MustCompile(`[^\w\s]`)

// CodeGenerator derives catalog codes of the form F<supplier>-WORD-WORD-WORD-<ms>.
// Codes are only practically unique: two calls in the same millisecond with
// the same name collide.
type CodeGenerator struct {
	now func() time.Time
}

func NewCodeGenerator(now func() time.Time) *CodeGenerator {
	if now == nil {
		now = time.Now
	}
	return &CodeGenerator{now: now}
}

func (g *CodeGenerator) Generate(name string, supplierID int64) string {
	clean := reCodeNoise.ReplaceAllString(util.FoldAccents(name), "")
	words := strings.Fields(clean)
	if len(words) > 3 {
		words = words[:3]
	}
	for i, w := range words {
		words[i] = strings.ToUpper(util.Truncate(w, 4))
	}

	stamp := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(stamp) > 6 {
		stamp = stamp[len(stamp)-6:]
	}
	return fmt.Sprintf("F%d-%s-%s", supplierID, strings.Join(words, "-"), stamp)
}
