package core

import (
	"net/url"
	"regexp"
	"strings"
)

// socialRule is one row of the social decision table
type socialRule struct {
	when    func(m ExtractedMetrics) bool
	level   Level
	score   int
	concern string
}

func followersAbove(m ExtractedMetrics, n int) bool {
	return m.FollowerCount != nil && *m.FollowerCount > n
}

func followersBelow(m ExtractedMetrics, n int) bool {
	return m.FollowerCount != nil && *m.FollowerCount < n
}

// socialRules is evaluated top to bottom, first match wins
var socialRules = []socialRule{
	{
		when:    func(m ExtractedMetrics) bool { return m.IsVerified && followersAbove(m, 1_000_000) },
		level:   LevelHigh,
		score:   85,
		concern: "Celebrity/influencer account - public figures do not privately romance strangers.",
	},
	{
		when:    func(m ExtractedMetrics) bool { return followersAbove(m, 1_000_000) },
		level:   LevelHigh,
		score:   90,
		concern: "Extremely high follower count, almost certainly impersonation.",
	},
	{
		when:    func(m ExtractedMetrics) bool { return followersAbove(m, 100_000) },
		level:   LevelHigh,
		score:   80,
		concern: "High-profile account, suspicious for personal contact.",
	},
	{
		when:    func(m ExtractedMetrics) bool { return m.IsVerified && followersAbove(m, 10_000) },
		level:   LevelMedium,
		score:   65,
		concern: "Verified but high-following account contacting user directly.",
	},
	{
		when: func(m ExtractedMetrics) bool {
			return followersBelow(m, 100) && m.FollowingCount != nil && *m.FollowingCount > 1_000
		},
		level:   LevelHigh,
		score:   80,
		concern: "Suspicious follower/following ratio typical of fake accounts.",
	},
	{
		when:    func(m ExtractedMetrics) bool { return !m.IsVerified && followersBelow(m, 1_000) },
		level:   LevelMedium,
		score:   60,
		concern: "Low followers, unverified - manual check recommended.",
	},
	{
		when:    func(ExtractedMetrics) bool { return true },
		level:   LevelLow,
		score:   35,
		concern: "Metrics within normal range.",
	},
}

const (
	unreadableScore = 40
	urlOnlyScore    = 50

	lowEngagementMinFollowers = 10_000
	lowEngagementRatio        = 1000
)

// ScoreSocialProfile runs the social decision table. metrics is nil when
// nothing was extracted; a follower count is required for the table rows, so
// metrics without one are treated as unreadable.
func ScoreSocialProfile(metrics *ExtractedMetrics, hasScreenshot bool) *RiskFinding {
	if metrics == nil || metrics.FollowerCount == nil {
		if !hasScreenshot {
			return nil
		}
		return &RiskFinding{
			Source:     SourceSocial,
			Score:      unreadableScore,
			Level:      LevelMedium,
			Concerns:   []string{"Screenshot provided but metrics unreadable."},
			Confidence: ConfidenceLow,
			Method:     MethodHeuristic,
		}
	}

	m := *metrics
	for _, r := range socialRules {
		if !r.when(m) {
			continue
		}
		concerns := []string{r.concern}
		if lowEngagement(m) {
			concerns = append(concerns, "Very low engagement relative to follower count.")
		}
		return &RiskFinding{
			Source:     SourceSocial,
			Score:      r.score,
			Level:      r.level,
			Concerns:   concerns,
			Confidence: ConfidenceHigh,
			Method:     MethodHeuristic,
		}
	}
	return nil
}

func lowEngagement(m ExtractedMetrics) bool {
	if m.LikesCount == nil || !followersAbove(m, lowEngagementMinFollowers) {
		return false
	}
	return *m.LikesCount*lowEngagementRatio < *m.FollowerCount
}

var digitRunRe = regexp.MustCompile(`\d{3,}`)

// ScoreProfileURLs scores social evidence that consists only of profile links
func ScoreProfileURLs(urls []SocialProfileURL) *RiskFinding {
	if len(urls) == 0 {
		return nil
	}

	concerns := []string{"Profile URL provided without screenshots - metrics unavailable, upload screenshots for a full check."}
	for _, u := range urls {
		if _, handle := ProfileHandle(u); digitRunRe.MatchString(handle) {
			concerns = append(concerns, "Username contains many numbers, common for throwaway accounts.")
			break
		}
	}

	return &RiskFinding{
		Source:     SourceSocial,
		Score:      urlOnlyScore,
		Level:      LevelMedium,
		Concerns:   concerns,
		Confidence: ConfidenceLow,
		Method:     MethodHeuristic,
	}
}

var platformHosts = []struct {
	host     string
	platform string
}{
	{"instagram.com", "instagram"},
	{"facebook.com", "facebook"},
	{"fb.com", "facebook"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"tiktok.com", "tiktok"},
	{"linkedin.com", "linkedin"},
}

// ProfileHandle infers platform and handle from a profile link. The handle
// is the last non-empty path segment.
func ProfileHandle(p SocialProfileURL) (platform, handle string) {
	platform = strings.ToLower(p.Platform)

	raw := strings.TrimSpace(p.URL)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return platform, ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if platform == "" {
		for _, ph := range platformHosts {
			if host == ph.host || strings.HasSuffix(host, "."+ph.host) {
				platform = ph.platform
				break
			}
		}
	}
	if platform == "" {
		platform = "other"
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimPrefix(segments[i], "@"); s != "" {
			return platform, s
		}
	}
	return platform, ""
}
