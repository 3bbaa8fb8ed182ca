package core

import (
	"regexp"
	"strings"
)

// CatalogVersion identifies the phrase tables below. Bump it whenever a rule
// or warning changes so cached verdicts and reports can be told apart.
const CatalogVersion = "2024.06.1"

// Category groups phrase rules that describe the same manipulation tactic
type Category string

const (
	CategoryUrgency         Category = "urgency"
	CategoryFinancial       Category = "financial"
	CategoryEmotionalAppeal Category = "emotional_appeal"
	CategoryGuiltTrip       Category = "guilt_trip"
	CategoryGrammarAnomaly  Category = "grammar_anomaly"
)

// Per-category hit weight of the fixed-weight score model
const categoryHitScore = 25

// PatternRule is one phrase rule of the catalog
type PatternRule struct {
	ID       string
	Category Category
	Matcher  *regexp.Regexp
	Warning  string
}

// PatternCatalog is an immutable, ordered set of phrase rules
type PatternCatalog struct {
	version    string
	rules      []PatternRule
	categories []Category
	warnings   map[Category]string
}

var categoryWarnings = map[Category]string{
	CategoryUrgency:         "Message creates false urgency - common in scams.",
	CategoryFinancial:       "Suspicious financial request detected.",
	CategoryEmotionalAppeal: "Emotional manipulation detected - common in scams.",
	CategoryGuiltTrip:       "Guilt-tripping tactics detected.",
	CategoryGrammarAnomaly:  "Unusual phrasing typical of scripted romance-scam messages.",
}

func rule(id string, category Category, pattern string) PatternRule {
	return PatternRule{
		ID:       id,
		Category: category,
		Matcher:  regexp.MustCompile(pattern),
		Warning:  categoryWarnings[category],
	}
}

var defaultCatalog = NewPatternCatalog(CatalogVersion, []PatternRule{
	rule("urg-001", CategoryUrgency, `\burgent(ly)?\b|\bemergency\b|\basap\b|\bquickly\b|\bhurry\b`),
	rule("urg-002", CategoryUrgency, `\bright (now|away)\b|\bimmediately\b|\bas soon as possible\b|\bbefore it'?s too late\b`),

	rule("fin-001", CategoryFinancial, `\$|\busd\b|\bmoney\b|\bpayments?\b|\btransfer\b|\bbank\b|\baccounts?\b`),
	rule("fin-002", CategoryFinancial, `western union|moneygram|gift ?cards?|\bbitcoin\b|\bcrypto(currency)?\b|\bwire\b|investment opportunity|\bcustoms fees?\b`),

	rule("emo-001", CategoryEmotionalAppeal, `\blove\b|\btrust\b|\bbelieve\b|\bhelp\b|\bsick\b|\bill\b|\bhospital\b|\bsurgery\b|\baccident\b`),
	rule("emo-002", CategoryEmotionalAppeal, `\bmy (darling|heart|queen|king)\b|\bsoul ?mate\b|\bdestiny\b`),

	rule("gui-001", CategoryGuiltTrip, `\bdon[’']?t care\b|\bthought you\b|\bif you really\b|\bprove\b`),
	rule("gui-002", CategoryGuiltTrip, `after all i( have|'ve| did) (done|did)|you don[’']?t trust me`),

	rule("gra-001", CategoryGrammarAnomaly, `\bam from\b|\bi am loving you\b|\bhow are you doing\b|\bhow was your night\b|\bgood (morning|night) my (love|dear)\b|\bi miss you so much\b`),
	rule("gra-002", CategoryGrammarAnomaly, `\bkindly\b|\bdo the needful\b`),
})

// DefaultPatternCatalog returns the built-in phrase catalog
func DefaultPatternCatalog() *PatternCatalog {
	return defaultCatalog
}

// NewPatternCatalog builds a catalog. Category order is the order in which
// categories first appear in rules.
func NewPatternCatalog(version string, rules []PatternRule) *PatternCatalog {
	c := &PatternCatalog{
		version:  version,
		rules:    append([]PatternRule(nil), rules...),
		warnings: make(map[Category]string),
	}
	for _, r := range c.rules {
		if _, seen := c.warnings[r.Category]; seen {
			continue
		}
		c.categories = append(c.categories, r.Category)
		c.warnings[r.Category] = r.Warning
	}
	return c
}

// Version returns the catalog version
func (c *PatternCatalog) Version() string {
	return c.version
}

// Categories returns the categories in declaration order
func (c *PatternCatalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Match returns the distinct categories triggered by text, in declaration order
func (c *PatternCatalog) Match(text string) []Category {
	lower := strings.ToLower(text)
	hit := make(map[Category]bool, len(c.categories))
	for _, r := range c.rules {
		if hit[r.Category] {
			continue
		}
		if r.Matcher.MatchString(lower) {
			hit[r.Category] = true
		}
	}

	var triggered []Category
	for _, cat := range c.categories {
		if hit[cat] {
			triggered = append(triggered, cat)
		}
	}
	return triggered
}

// Classify scores chat text against the catalog. Blank text is absent
// evidence and yields nil.
func (c *PatternCatalog) Classify(text string) *RiskFinding {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	triggered := c.Match(text)
	score := len(triggered) * categoryHitScore
	if score > 100 {
		score = 100
	}

	concerns := make([]string, 0, len(triggered))
	for _, cat := range triggered {
		concerns = append(concerns, c.warnings[cat])
	}

	return &RiskFinding{
		Source:     SourceChat,
		Score:      score,
		Level:      LevelForScore(score),
		Concerns:   concerns,
		Confidence: ConfidenceMedium,
		Method:     MethodHeuristic,
	}
}

// ClassifyText runs the default catalog over text
func ClassifyText(text string) *RiskFinding {
	return defaultCatalog.Classify(text)
}
