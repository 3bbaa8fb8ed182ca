package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikey/lovescan/internal/core"
)

func outputReportJSON(cmd *cobra.Command, report *core.ReportPayload) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReportText(cmd *cobra.Command, report *core.ReportPayload, elapsed time.Duration) {
	cmd.Println("=== Verdict ===")
	cmd.Printf("Verdict: %s\n", report.Verdict)
	cmd.Printf("Risk level: %s\n", displayLevel(report))
	cmd.Printf("Risk score: %d\n", report.RiskScore)
	cmd.Printf("Score band: %s\n", report.ScoreBand)
	cmd.Printf("Recommendation: %s\n", report.Recommendation)

	if len(report.Aggregate.Findings) > 0 {
		cmd.Println()
		cmd.Println("=== Findings ===")
		for _, f := range report.Aggregate.Findings {
			cmd.Printf("[%s] %s %d (confidence %s, via %s)\n", f.Source, f.Level, f.Score, f.Confidence, f.Method)
			for _, c := range f.Concerns {
				cmd.Printf("  - %s\n", c)
			}
		}
	}

	if len(report.Aggregate.MissingSources) > 0 {
		missing := make([]string, len(report.Aggregate.MissingSources))
		for i, s := range report.Aggregate.MissingSources {
			missing[i] = string(s)
		}
		cmd.Printf("\nNot analyzed: %s\n", strings.Join(missing, ", "))
	}

	if report.ReportedName != nil || len(report.SocialHandles) > 0 {
		cmd.Println()
		cmd.Println("=== Reported Identity ===")
		if report.ReportedName != nil {
			cmd.Printf("Name: %s\n", *report.ReportedName)
		}
		platforms := make([]string, 0, len(report.SocialHandles))
		for p := range report.SocialHandles {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)
		for _, p := range platforms {
			cmd.Printf("%s: %s\n", p, report.SocialHandles[p])
		}
	}

	if len(report.SuggestedReasons) > 0 {
		cmd.Println()
		cmd.Println("=== Suggested Report Reasons ===")
		for _, r := range report.SuggestedReasons {
			cmd.Printf("  - %s\n", r)
		}
	}

	cmd.Println()
	cmd.Printf("Scan ID: %s\n", report.ID)
	cmd.Printf("Processing time: %v\n", elapsed.Round(time.Millisecond))
}

func displayLevel(report *core.ReportPayload) string {
	if report.Aggregate.NoEvidence {
		return "n/a"
	}
	return string(report.RiskLevel)
}
