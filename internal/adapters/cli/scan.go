package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikey/lovescan/internal/adapters/vision"
	"github.com/mikey/lovescan/internal/core"
)

var (
	scanChats       []string
	scanChatFile    string
	scanOCRFiles    []string
	scanRole        string
	scanLabels      []string
	scanMatchesFile string
	scanVisionFile  string
	scanImageURL    string
	scanProfileURLs []string
	scanTimeout     time.Duration
	scanJSON        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score evidence for romance-scam risk",
	Long: `Scores the given evidence and prints an explainable verdict.
Chat text, screenshot OCR text, reverse image search results and profile
links can be combined; sources that are not supplied are reported as not
analyzed.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringArrayVar(&scanChats, "chat", nil, "chat text to analyze (repeatable)")
	scanCmd.Flags().StringVar(&scanChatFile, "chat-file", "", "file holding chat text, - for stdin")
	scanCmd.Flags().StringArrayVar(&scanOCRFiles, "ocr-file", nil, "file holding screenshot OCR text (repeatable)")
	scanCmd.Flags().StringVar(&scanRole, "role", string(core.RoleProfile), "screenshot role for --ocr-file (profile, post)")
	scanCmd.Flags().StringArrayVar(&scanLabels, "label", nil, "image label detected on the screenshots (repeatable)")
	scanCmd.Flags().StringVar(&scanMatchesFile, "matches-file", "", "JSON file holding reverse image search matches")
	scanCmd.Flags().StringVar(&scanVisionFile, "vision-file", "", "Cloud Vision web detection response to read matches from")
	scanCmd.Flags().StringVar(&scanImageURL, "image-url", "", "profile photo to run a reverse image search on")
	scanCmd.Flags().StringArrayVar(&scanProfileURLs, "profile-url", nil, "social profile link (repeatable)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	if buildService == nil {
		return errors.New("scan service not configured")
	}

	svc, err := buildService(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}
	if svc.Close != nil {
		defer svc.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	items, err := collectEvidence(ctx, cmd, svc)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := svc.Scanner.Scan(ctx, items)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		return outputReportJSON(cmd, report)
	}
	outputReportText(cmd, report, time.Since(start))
	return nil
}

// collectEvidence turns the scan flags into evidence items
func collectEvidence(ctx context.Context, cmd *cobra.Command, svc *Services) ([]core.EvidenceItem, error) {
	var items []core.EvidenceItem

	for _, chat := range scanChats {
		if strings.TrimSpace(chat) != "" {
			items = append(items, core.ChatText{Text: chat})
		}
	}
	if scanChatFile != "" {
		text, err := readInput(cmd, scanChatFile)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) != "" {
			items = append(items, core.ChatText{Text: text})
		}
	}

	role, err := parseRole(scanRole)
	if err != nil {
		return nil, err
	}
	for _, path := range scanOCRFiles {
		text, err := readInput(cmd, path)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) != "" {
			items = append(items, core.ScreenshotOCRText{Text: text, Role: role, Labels: scanLabels})
		}
	}

	matches, found, err := imageMatches(ctx, cmd, svc)
	if err != nil {
		return nil, err
	}
	if found {
		items = append(items, core.ImageMatchSet{Matches: matches})
	}

	for _, u := range scanProfileURLs {
		if strings.TrimSpace(u) != "" {
			items = append(items, core.SocialProfileURL{URL: strings.TrimSpace(u)})
		}
	}

	return items, nil
}

// imageMatches reads reverse image search results from the first configured input
func imageMatches(ctx context.Context, cmd *cobra.Command, svc *Services) ([]core.ImageMatch, bool, error) {
	switch {
	case scanMatchesFile != "":
		data, err := readInput(cmd, scanMatchesFile)
		if err != nil {
			return nil, false, err
		}
		matches := []core.ImageMatch{}
		if err := json.Unmarshal([]byte(data), &matches); err != nil {
			return nil, false, fmt.Errorf("invalid matches file %s: %w", scanMatchesFile, err)
		}
		return matches, true, nil

	case scanVisionFile != "":
		data, err := readInput(cmd, scanVisionFile)
		if err != nil {
			return nil, false, err
		}
		resp, err := vision.ParseResponse([]byte(data))
		if err != nil {
			return nil, false, fmt.Errorf("invalid vision file %s: %w", scanVisionFile, err)
		}
		matches, err := vision.MatchesFromResponse(resp)
		if err != nil {
			return nil, false, fmt.Errorf("vision file %s: %w", scanVisionFile, err)
		}
		return matches, true, nil

	case scanImageURL != "":
		if svc.Images == nil {
			return nil, false, errors.New("reverse image search is not configured, enable vision in the config file")
		}
		matches, err := svc.Images.SearchImage(ctx, scanImageURL)
		if err != nil {
			cmd.PrintErrf("Warning: reverse image search failed, skipping image analysis: %v\n", err)
			return nil, false, nil
		}
		return matches, true, nil
	}
	return nil, false, nil
}

func parseRole(role string) (core.ScreenshotRole, error) {
	switch core.ScreenshotRole(strings.ToLower(strings.TrimSpace(role))) {
	case core.RoleProfile, "":
		return core.RoleProfile, nil
	case core.RolePost:
		return core.RolePost, nil
	default:
		return "", fmt.Errorf("unknown screenshot role %q, expected profile or post", role)
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
