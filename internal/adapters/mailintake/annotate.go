package mailintake

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
)

// maxHeaderValue keeps header lines well under the SMTP line limit
const maxHeaderValue = 900

// annotate prepends verdict headers to the raw message
func annotate(raw []byte, names config.SMTPHeaders, report *core.ReportPayload, scanErr error) []byte {
	var buf bytes.Buffer

	if scanErr != nil {
		writeHeader(&buf, "X-LoveScan-Error", scanErr.Error())
	} else {
		writeHeader(&buf, names.Level, string(report.RiskLevel))
		writeHeader(&buf, names.Score, fmt.Sprintf("%d", report.RiskScore))
		writeHeader(&buf, names.Verdict, report.Verdict)
		if concerns := concernsHeader(report.Aggregate.Findings); concerns != "" {
			writeHeader(&buf, names.Concerns, concerns)
		}
	}

	buf.Write(raw)
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	if name == "" {
		return
	}
	fmt.Fprintf(buf, "%s: %s\r\n", name, headerValue(value))
}

// headerValue flattens a value onto one line and bounds its length
func headerValue(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if len(value) > maxHeaderValue {
		value = strings.ToValidUTF8(value[:maxHeaderValue], "")
	}
	return value
}

// concernsHeader joins the concerns of every finding
func concernsHeader(findings []core.RiskFinding) string {
	var parts []string
	for _, f := range findings {
		parts = append(parts, f.Concerns...)
	}
	return strings.Join(parts, "; ")
}
