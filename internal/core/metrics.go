package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlatformUnknown is reported when no platform name appears in the text
const PlatformUnknown = "Unknown"

// metricPattern captures a number and, unless suffix is fixed, an optional
// K/M/B multiplier in its second group
type metricPattern struct {
	re     *regexp.Regexp
	suffix string
}

const numberExpr = `(\d+(?:,\d{3})*(?:\.\d+)?)`

// metricPatterns builds the prioritized list for one label, most specific first:
// explicit suffix, generic number before label, label before number.
func metricPatterns(label string) []metricPattern {
	var patterns []metricPattern
	for _, suffix := range []string{"M", "K", "B"} {
		patterns = append(patterns, metricPattern{
			re:     regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*` + suffix + `\s*` + label),
			suffix: suffix,
		})
	}
	patterns = append(patterns,
		metricPattern{re: regexp.MustCompile(`(?i)` + numberExpr + `\s*([kmb])?\s*` + label)},
		metricPattern{re: regexp.MustCompile(`(?i)` + label + `[:\s]*` + numberExpr + `\s*([kmb])?\b`)},
	)
	return patterns
}

var (
	followerPatterns  = metricPatterns(`followers?\b`)
	followingPatterns = metricPatterns(`following\b`)
	postPatterns      = metricPatterns(`posts?\b`)
	likePatterns      = metricPatterns(`likes?\b`)
	commentPatterns   = metricPatterns(`comments?\b`)

	verifiedWordRe = regexp.MustCompile(`(?i)\bverified\b`)
	businessRe     = regexp.MustCompile(`(?i)business|professional|creator`)
	countRe        = regexp.MustCompile(`^\s*` + numberExpr + `\s*([kmbKMB])?\s*$`)
)

var verifiedGlyphs = []string{"✓", "✔", "☑", "✅"}

var platformNames = []struct {
	token string
	name  string
}{
	{"instagram", "Instagram"},
	{"facebook", "Facebook"},
	{"twitter", "Twitter"},
	{"linkedin", "LinkedIn"},
	{"tiktok", "TikTok"},
}

// ExtractMetrics reads profile metrics out of screenshot OCR text
func ExtractMetrics(ocrText string) ExtractedMetrics {
	return ExtractMetricsWithLabels(ocrText, nil)
}

// ExtractMetricsWithLabels is ExtractMetrics with the vision labels of the
// same screenshot taken into account for verification
func ExtractMetricsWithLabels(ocrText string, labels []string) ExtractedMetrics {
	text := norm.NFKC.String(ocrText)
	lower := strings.ToLower(text)

	m := ExtractedMetrics{
		FollowerCount:  firstCount(text, followerPatterns),
		FollowingCount: firstCount(text, followingPatterns),
		PostCount:      firstCount(text, postPatterns),
		LikesCount:     firstCount(text, likePatterns),
		CommentsCount:  firstCount(text, commentPatterns),
		IsVerified:     isVerified(text, lower, labels),
		IsBusiness:     businessRe.MatchString(text),
		Platform:       PlatformUnknown,
	}

	for _, p := range platformNames {
		if strings.Contains(lower, p.token) {
			m.Platform = p.name
			break
		}
	}

	return m
}

func isVerified(text, lower string, labels []string) bool {
	for _, g := range verifiedGlyphs {
		if strings.Contains(text, g) {
			return true
		}
	}
	if verifiedWordRe.MatchString(text) || strings.Contains(lower, "blue checkmark") {
		return true
	}
	for _, label := range labels {
		l := strings.ToLower(label)
		if strings.Contains(l, "verified") || strings.Contains(l, "checkmark") {
			return true
		}
	}
	return false
}

func firstCount(text string, patterns []metricPattern) *int {
	for _, p := range patterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		suffix := p.suffix
		if suffix == "" && len(match) > 2 {
			suffix = match[2]
		}
		n, ok := scaleCount(match[1], suffix)
		if !ok {
			// out-of-range count, the metric stays unset
			return nil
		}
		return &n
	}
	return nil
}

// ParseCount parses a displayed count such as "14.5M", "14.5 M" or "14,532"
func ParseCount(s string) (int, bool) {
	match := countRe.FindStringSubmatch(norm.NFKC.String(s))
	if match == nil {
		return 0, false
	}
	return scaleCount(match[1], match[2])
}

// maxCount bounds parsed counts; larger values are OCR noise
const maxCount = math.MaxInt32

func scaleCount(number, suffix string) (int, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(suffix) {
	case "K":
		value *= 1e3
	case "M":
		value *= 1e6
	case "B":
		value *= 1e9
	}
	value = math.Round(value)
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > maxCount {
		return 0, false
	}
	return int(value), true
}

// MergeMetrics fills the gaps of primary with values from secondary. Counts
// already present in primary win.
func MergeMetrics(primary, secondary ExtractedMetrics) ExtractedMetrics {
	merged := primary
	if merged.FollowerCount == nil {
		merged.FollowerCount = secondary.FollowerCount
	}
	if merged.FollowingCount == nil {
		merged.FollowingCount = secondary.FollowingCount
	}
	if merged.PostCount == nil {
		merged.PostCount = secondary.PostCount
	}
	if merged.LikesCount == nil {
		merged.LikesCount = secondary.LikesCount
	}
	if merged.CommentsCount == nil {
		merged.CommentsCount = secondary.CommentsCount
	}
	merged.IsVerified = primary.IsVerified || secondary.IsVerified
	merged.IsBusiness = primary.IsBusiness || secondary.IsBusiness
	if merged.Platform == "" || merged.Platform == PlatformUnknown {
		merged.Platform = secondary.Platform
	}
	if merged.Platform == "" {
		merged.Platform = PlatformUnknown
	}
	return merged
}
