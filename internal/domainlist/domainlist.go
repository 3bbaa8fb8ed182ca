package domainlist

import (
	"strings"

	"go.uber.org/zap"
)

// Default token sets used when classifying reverse-image-search hits
var (
	DefaultScamTokens   = []string{"scam", "fraud", "fake", "alert", "blacklist"}
	DefaultStockTokens  = []string{"stock", "shutterstock", "getty", "unsplash", "pexels"}
	DefaultSocialTokens = []string{"facebook", "instagram", "linkedin", "twitter", "tiktok"}
)

// List matches domains against a set of tokens. A domain is on the list when
// it contains any token as a substring.
type List struct {
	name   string
	tokens []string
	logger *zap.Logger
}

// New creates a domain list from defaults plus any configured extras
func New(name string, defaults, extra []string, logger *zap.Logger) *List {
	seen := make(map[string]bool)
	var tokens []string
	for _, t := range append(append([]string(nil), defaults...), extra...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	if len(extra) > 0 && logger != nil {
		logger.Info("Initialized domain list",
			zap.String("list", name),
			zap.Strings("tokens", tokens))
	}

	return &List{
		name:   name,
		tokens: tokens,
		logger: logger,
	}
}

// Name returns the list name
func (l *List) Name() string {
	return l.name
}

// Contains checks if the domain carries any token of the list
func (l *List) Contains(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}

	for _, token := range l.tokens {
		if strings.Contains(domain, token) {
			if l.logger != nil {
				l.logger.Debug("Domain matched list",
					zap.String("list", l.name),
					zap.String("domain", domain),
					zap.String("token", token))
			}
			return true
		}
	}

	return false
}

// Count returns how many of the given domains are on the list
func (l *List) Count(domains []string) int {
	n := 0
	for _, d := range domains {
		if l.Contains(d) {
			n++
		}
	}
	return n
}
