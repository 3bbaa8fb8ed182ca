package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/lovescan/internal/core"
)

// ErrNoJSON is returned when a model reply contains no JSON object
var ErrNoJSON = errors.New("no JSON object in model response")

// ChatVerdictResponse is the structured reply requested by the prompt
type ChatVerdictResponse struct {
	RiskScore       *float64 `json:"riskScore"`
	RiskLevel       string   `json:"riskLevel"`
	PrimaryConcerns []string `json:"primaryConcerns"`
	Confidence      string   `json:"confidence"`
}

// ParseVerdict extracts the chat verdict from a model reply. Replies that
// wrap the JSON object in prose are accepted.
func ParseVerdict(reply string, model string) (*core.RiskFinding, error) {
	var resp ChatVerdictResponse
	if err := json.Unmarshal([]byte(reply), &resp); err != nil {
		start := strings.Index(reply, "{")
		end := strings.LastIndex(reply, "}")
		if start < 0 || end <= start {
			return nil, ErrNoJSON
		}
		if err := json.Unmarshal([]byte(reply[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	if resp.RiskScore == nil {
		return nil, fmt.Errorf("model response has no riskScore")
	}
	score := int(*resp.RiskScore + 0.5)
	if *resp.RiskScore < 0 || score > 100 {
		return nil, fmt.Errorf("model riskScore %v out of range", *resp.RiskScore)
	}

	concerns := make([]string, 0, len(resp.PrimaryConcerns))
	for _, c := range resp.PrimaryConcerns {
		if c = strings.TrimSpace(c); c != "" {
			concerns = append(concerns, c)
		}
	}

	return &core.RiskFinding{
		Source:     core.SourceChat,
		Score:      score,
		Level:      core.LevelForScore(score),
		Concerns:   concerns,
		Confidence: parseConfidence(resp.Confidence),
		Method:     model,
	}, nil
}

// parseConfidence accepts answers like "HIGH" or "high confidence"
func parseConfidence(s string) core.Confidence {
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) > 0 {
		if c := core.Confidence(fields[0]); c.Valid() {
			return c
		}
	}
	return core.ConfidenceMedium
}
