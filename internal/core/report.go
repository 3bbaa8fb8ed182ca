package core

import (
	"fmt"
	"strings"
)

// Report reasons offered to the reporting layer
const (
	ReasonMoneyRequest      = "Money Request"
	ReasonEmergencyStory    = "Emergency Story"
	ReasonStolenPhotos      = "Stolen Photos"
	ReasonFakeIdentity      = "Fake Identity"
	ReasonTooFastRomance    = "Too Fast Romance"
	ReasonGrammarIssues     = "Grammar Issues"
	ReasonUnverifiedProfile = "Unverified Profile"
)

// reasonRules map finding concerns to report reasons, in the order reasons are listed
var reasonRules = []struct {
	source Source
	match  string
	reason string
}{
	{SourceChat, categoryWarnings[CategoryFinancial], ReasonMoneyRequest},
	{SourceChat, categoryWarnings[CategoryUrgency], ReasonEmergencyStory},
	{SourceImage, "scam reporting", ReasonStolenPhotos},
	{SourceImage, "stock photo", ReasonStolenPhotos},
	{SourceSocial, "impersonation", ReasonFakeIdentity},
	{SourceSocial, "celebrity", ReasonFakeIdentity},
	{SourceSocial, "fake accounts", ReasonFakeIdentity},
	{SourceChat, categoryWarnings[CategoryEmotionalAppeal], ReasonTooFastRomance},
	{SourceChat, categoryWarnings[CategoryGrammarAnomaly], ReasonGrammarIssues},
	{SourceSocial, "unverified", ReasonUnverifiedProfile},
}

var scanTypes = map[Source]string{
	SourceChat:   "chat_analysis",
	SourceImage:  "reverse_image",
	SourceSocial: "social_media",
}

// ScoreBand names the band a score falls in
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return "Very High Risk"
	case score >= 60:
		return "High Risk"
	case score >= 40:
		return "Medium Risk"
	case score >= 20:
		return "Low Risk"
	default:
		return "Very Low Risk"
	}
}

// Recommendation returns the advice shown with a verdict
func Recommendation(agg AggregateRisk) string {
	if agg.NoEvidence {
		return "Add chat text, profile screenshots or a profile photo search to get a verdict."
	}
	switch agg.OverallLevel {
	case LevelHigh:
		return "Strong scam indicators found. Do not send money or personal information, stop contact and consider reporting this profile."
	case LevelMedium:
		return "Some warning signs found. Verify the person's identity through video calls before proceeding."
	default:
		return "No strong warning signs found. Still recommended to verify identity through additional means."
	}
}

// Verdict renders the caller-visible verdict line
func Verdict(agg AggregateRisk) string {
	if agg.NoEvidence {
		return "No evidence provided"
	}
	return fmt.Sprintf("%s risk (score %d, %s)", agg.OverallLevel, agg.OverallScore, strings.ToLower(ScoreBand(agg.OverallScore)))
}

// SuggestedReasons derives report reasons from finding concerns
func SuggestedReasons(findings []RiskFinding) []string {
	reasons := []string{}
	seen := make(map[string]bool)
	for _, r := range reasonRules {
		if seen[r.reason] {
			continue
		}
		for _, f := range findings {
			if f.Source != r.source || !concernsMention(f.Concerns, r.match) {
				continue
			}
			seen[r.reason] = true
			reasons = append(reasons, r.reason)
			break
		}
	}
	return reasons
}

func concernsMention(concerns []string, match string) bool {
	match = strings.ToLower(match)
	for _, c := range concerns {
		if strings.Contains(strings.ToLower(c), match) {
			return true
		}
	}
	return false
}

// AssembleReport combines aggregate, entity and evidence references into a
// report payload. ID and CreatedAt are left for the caller to stamp.
func AssembleReport(agg AggregateRisk, entity ExtractedEntity, refs []EvidenceRef) ReportPayload {
	types := []string{}
	for _, s := range AllSources {
		for _, ref := range refs {
			if ref.Source == s {
				types = append(types, scanTypes[s])
				break
			}
		}
	}

	band := ScoreBand(agg.OverallScore)
	if agg.NoEvidence {
		band = "No Evidence"
	}

	if refs == nil {
		refs = []EvidenceRef{}
	}

	return ReportPayload{
		ReportedName:     entity.CandidateName,
		SocialHandles:    entity.SocialHandles,
		ScanTypes:        types,
		RiskScore:        agg.OverallScore,
		RiskLevel:        agg.OverallLevel,
		ScoreBand:        band,
		Verdict:          Verdict(agg),
		Recommendation:   Recommendation(agg),
		SuggestedReasons: SuggestedReasons(agg.Findings),
		Aggregate:        agg,
		Entity:           entity,
		EvidenceRefs:     refs,
		CatalogVersion:   CatalogVersion,
	}
}
