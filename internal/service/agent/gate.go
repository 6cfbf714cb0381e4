package agent

import (
	"strings"

	"github.com/solarsmart/salesbot/internal/config"
)

// Gate decides whether a generated response needs human review before it
// reaches the customer. It errs on the side of flagging: a benign response
// containing a sensitive keyword is an acceptable false positive, a missed
// pricing commitment is not.
type Gate struct {
	keywords []string
}

func NewGate(cfg *config.ApprovalConfig) *Gate {
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Gate{keywords: keywords}
}

// RequiresReview reports whether any configured keyword appears anywhere in
// the response, case-insensitively.
func (g *Gate) RequiresReview(response string) bool {
	lower := strings.ToLower(response)
	for _, keyword := range g.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
