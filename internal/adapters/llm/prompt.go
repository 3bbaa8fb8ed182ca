package llm

import (
	"fmt"
)

// SystemPrompt is sent as the system message where the API supports one
const SystemPrompt = "You are an expert in romance scam detection. Respond only with JSON."

const promptFormat = `You are an expert in romance scam detection. Analyze this chat conversation for romance scam indicators.

Chat conversation:
"""
%s
"""

Look for these red flags:
1. Financial requests - money, gifts, wire transfers, gift cards, cryptocurrency
2. Emotional manipulation - excessive romantic language, quick profession of love, urgency
3. Avoidance patterns - refusing video calls, dodging specific questions, inconsistent details
4. Common scammer profiles - military personnel, engineers or doctors overseas, widowers
5. Language patterns - generic romantic phrases, scripted or non-native phrasing
6. Emergency scenarios - sudden emergencies requiring financial help

Respond with a JSON object containing:
- riskScore: integer between 0 and 100 (higher means more likely a scam)
- riskLevel: "LOW", "MEDIUM" or "HIGH"
- primaryConcerns: list of short strings naming the red flags found, empty if none
- confidence: "LOW", "MEDIUM" or "HIGH"

Respond only with the JSON object and nothing else.`

// BuildPrompt formats the chat analysis prompt around prepared chat text
func BuildPrompt(chat string) string {
	return fmt.Sprintf(promptFormat, chat)
}
