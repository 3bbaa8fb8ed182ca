package core

import (
	"fmt"
	"strings"

	"github.com/mikey/lovescan/internal/domainlist"
)

// Representative scores for the categorical image verdict
const (
	imageScoreHigh   = 85
	imageScoreMedium = 55
	imageScoreLow    = 20
)

const (
	imageMatchCountLimit  = 5
	imageExactMatchScore  = 90
	imageExactMatchLimit  = 2
	imageSocialMatchLimit = 2
)

var suspiciousLabelTerms = []string{"fake", "scam", "stolen", "catfish"}

// ImageMatchAnalyzer turns reverse-image-search hits into an image finding
type ImageMatchAnalyzer struct {
	scam   *domainlist.List
	stock  *domainlist.List
	social *domainlist.List
}

// NewImageMatchAnalyzer creates an analyzer over the given domain lists
func NewImageMatchAnalyzer(scam, stock, social *domainlist.List) *ImageMatchAnalyzer {
	return &ImageMatchAnalyzer{
		scam:   scam,
		stock:  stock,
		social: social,
	}
}

// DefaultImageMatchAnalyzer uses the built-in token lists
func DefaultImageMatchAnalyzer() *ImageMatchAnalyzer {
	return NewImageMatchAnalyzer(
		domainlist.New("scam", domainlist.DefaultScamTokens, nil, nil),
		domainlist.New("stock", domainlist.DefaultStockTokens, nil, nil),
		domainlist.New("social", domainlist.DefaultSocialTokens, nil, nil),
	)
}

// raise returns the higher of two levels
func raise(current, to Level) Level {
	if to.rank() > current.rank() {
		return to
	}
	return current
}

// Analyze applies the image rules in order. The level is only ever raised.
// No matches means no finding.
func (a *ImageMatchAnalyzer) Analyze(matches []ImageMatch) *RiskFinding {
	if len(matches) == 0 {
		return nil
	}

	domains := make([]string, len(matches))
	for i, m := range matches {
		domains[i] = m.Domain
	}

	level := LevelLow
	var concerns []string

	if n := a.scam.Count(domains); n > 0 {
		level = raise(level, LevelHigh)
		concerns = append(concerns, fmt.Sprintf("Found on %d scam reporting website(s)", n))
	}

	if n := a.stock.Count(domains); n > 0 {
		level = raise(level, LevelMedium)
		concerns = append(concerns, fmt.Sprintf("Image appears to be a stock photo (found on %d stock sites)", n))
	}

	if len(matches) > imageMatchCountLimit {
		level = raise(level, LevelMedium)
		concerns = append(concerns, fmt.Sprintf("Image appears on %d different websites", len(matches)))
	}

	exact := 0
	for _, m := range matches {
		if m.Score > imageExactMatchScore {
			exact++
		}
	}
	if exact > imageExactMatchLimit {
		level = raise(level, LevelMedium)
		concerns = append(concerns, fmt.Sprintf("%d exact or near-exact matches found", exact))
	}

	if n := a.social.Count(domains); n > imageSocialMatchLimit {
		level = raise(level, LevelMedium)
		concerns = append(concerns, fmt.Sprintf("Image found on %d social media platforms", n))
	}

	if hasSuspiciousLabel(matches) {
		level = raise(level, LevelMedium)
		concerns = append(concerns, "Image analysis detected suspicious content indicators")
	}

	if len(concerns) == 0 {
		concerns = append(concerns, "Limited online presence detected")
	}

	return &RiskFinding{
		Source:     SourceImage,
		Score:      imageScore(level),
		Level:      level,
		Concerns:   concerns,
		Confidence: ConfidenceHigh,
		Method:     MethodHeuristic,
	}
}

func hasSuspiciousLabel(matches []ImageMatch) bool {
	for _, m := range matches {
		for _, label := range m.Labels {
			l := strings.ToLower(label)
			for _, term := range suspiciousLabelTerms {
				if strings.Contains(l, term) {
					return true
				}
			}
		}
	}
	return false
}

func imageScore(level Level) int {
	switch level {
	case LevelHigh:
		return imageScoreHigh
	case LevelMedium:
		return imageScoreMedium
	default:
		return imageScoreLow
	}
}
