package core

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name patterns, highest priority first
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)\bmy name[’']s\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)\bi[’']m\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)\bi am\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)\bcall me\s+(\p{L}+)`),
	regexp.MustCompile(`(?i)\bthis is\s+(\p{L}+)`),
	regexp.MustCompile(`(?m)^[ \t]*(\p{L}+):\s`),
	regexp.MustCompile(`(?m)^[ \t]*(\p{L}+)\s*\[[^\]\n]*\]\s*:`),
	regexp.MustCompile(`(?i)\b(\p{L}+) here\b`),
}

var capitalizedWordRe = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)

// nameStopwords holds words that follow introduction phrases without being names
var nameStopwords = toSet(
	"hi", "hey", "hello", "good", "how", "what", "when", "where", "why", "ok", "okay", "yes", "no",
	"so", "not", "just", "here", "there", "from", "a", "an", "the", "in", "at", "on", "out", "with",
	"fine", "sorry", "very", "really", "sure", "glad", "happy", "going", "loving", "doing", "coming",
	"your", "you", "me", "my", "our", "it", "that", "this", "is", "always", "still", "now", "also",
	"busy", "tired", "well", "afraid", "waiting", "sending", "sad", "lonely", "single", "widowed",
	"working", "only", "new", "thinking", "urgent", "serious", "important", "true", "user", "other",
	"stuck", "sick", "ill", "back", "home", "alone", "trying", "can", "will", "need", "have", "had",
	"instagram", "ig", "facebook", "fb", "twitter", "tiktok", "whatsapp", "snapchat", "telegram",
	"followers", "following", "posts", "likes", "comments",
)

// fallbackStopwords extends nameStopwords for the capitalized-word fallback
var fallbackStopwords = toSet(
	"the", "this", "that", "hello", "good", "morning", "evening", "night", "today", "tomorrow", "yesterday",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "june", "july", "august", "september", "october",
	"november", "december", "instagram", "facebook", "twitter", "tiktok", "linkedin", "whatsapp",
	"telegram", "snapchat", "followers", "following", "posts", "verified", "message", "messages",
	"please", "thanks", "thank", "dear", "darling", "honey", "baby", "love", "god", "and", "but",
	"are", "was", "were", "did", "can", "not", "for", "you", "your", "yours", "what", "why", "how",
	"account", "profile", "edit", "follow", "followed", "unfollow", "share", "post", "reply",
	"like", "likes", "comment", "comments", "story", "stories", "search", "home", "settings",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// labelled builds a handle pattern for "<platform> [handle|id] [is] <handle>"
func labelled(platform string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + platform + `(?:\s+(?:handle|id|name|account|username))?(?:\s+is)?[: \t]+@?(\w+)`)
}

var handlePatterns = []struct {
	platform string
	re       *regexp.Regexp
}{
	{"instagram", labelled(`instagram`)},
	{"instagram", labelled(`ig`)},
	{"facebook", labelled(`(?:facebook|fb)`)},
	{"twitter", regexp.MustCompile(`(?i)\b(?:twitter|x)[: \t]+@(\w+)`)},
	{"tiktok", labelled(`tiktok`)},
	{"snapchat", labelled(`(?:snapchat|snap)`)},
	{"telegram", labelled(`telegram`)},
	{"whatsapp", regexp.MustCompile(`(?i)\bwhatsapp[: \t]*(\+?\d+)`)},
	{"other", regexp.MustCompile(`(?:^|[^\w.])@(\w+)`)},
}

var handleStopwords = toSet(
	"is", "me", "the", "and", "followers", "following", "posts", "profile", "account", "com",
	"name", "handle", "id", "username", "here", "too", "please", "now",
)

// ExtractEntity pulls a candidate name and social handles out of evidence
// text. texts must already be ordered by source priority (social, chat,
// image); handles from profile links are recorded before handles from text.
func ExtractEntity(texts []string, profiles ...SocialProfileURL) ExtractedEntity {
	entity := ExtractedEntity{
		SocialHandles: make(map[string]string),
		Handles:       []SocialHandle{},
	}

	for _, p := range profiles {
		if platform, handle := ProfileHandle(p); handle != "" {
			entity.addHandle(platform, handle)
		}
	}

	joined := strings.Join(texts, "\n")
	if strings.TrimSpace(joined) == "" {
		return entity
	}

	if name, ok := candidateName(joined); ok {
		entity.CandidateName = &name
	}

	for _, hp := range handlePatterns {
		for _, match := range hp.re.FindAllStringSubmatch(joined, -1) {
			handle := match[1]
			if handleStopwords[strings.ToLower(handle)] {
				continue
			}
			if hp.platform != "whatsapp" && !containsLetter(handle) {
				continue
			}
			if hp.platform == "other" && entity.hasHandle(handle) {
				continue
			}
			entity.addHandle(hp.platform, handle)
		}
	}

	return entity
}

func candidateName(text string) (string, bool) {
	for _, re := range namePatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			word := match[1]
			if len([]rune(word)) < 2 || nameStopwords[strings.ToLower(word)] {
				continue
			}
			return cases.Title(language.Und).String(word), true
		}
	}

	for _, word := range capitalizedWordRe.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if fallbackStopwords[lower] || nameStopwords[lower] {
			continue
		}
		return word, true
	}

	return "", false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func (e *ExtractedEntity) hasHandle(handle string) bool {
	for _, h := range e.Handles {
		if strings.EqualFold(h.Handle, handle) {
			return true
		}
	}
	return false
}

func (e *ExtractedEntity) addHandle(platform, handle string) {
	for _, h := range e.Handles {
		if h.Platform == platform && strings.EqualFold(h.Handle, handle) {
			return
		}
	}
	e.Handles = append(e.Handles, SocialHandle{Platform: platform, Handle: handle})
	if _, ok := e.SocialHandles[platform]; !ok {
		e.SocialHandles[platform] = handle
	}
}
