package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
)

var severityEmoji = map[checkapi.StatusCode]string{
	checkapi.StatusSkip:  "⏩",
	checkapi.StatusInfo:  "ℹ️",
	checkapi.StatusPass:  "✅",
	checkapi.StatusWarn:  "⚠️",
	checkapi.StatusFail:  "🔥",
	checkapi.StatusFatal: "☠️",
	checkapi.StatusError: "💥",
}

// MarkdownReporter writes a GitHub-flavoured Markdown report with one
// collapsible block per file.
type MarkdownReporter struct {
	w io.WriteCloser
}

func NewMarkdownReporter(path string, stdout io.Writer) (*MarkdownReporter, error) {
	w, err := openDestination(path, stdout)
	if err != nil {
		return nil, err
	}
	return &MarkdownReporter{w: w}, nil
}

func (r *MarkdownReporter) Report(results *checkapi.RunResults, cfg *config.Config, reg *checkapi.Registry) error {
	threshold := cfg.ReportThreshold()
	var b strings.Builder

	b.WriteString("## Fontspector report\n\n")
	fmt.Fprintf(&b, "Profile: `%s`. Showing checks whose worst status is at least **%s**.\n\n", cfg.Profile.Name, threshold)

	// Summary table
	codes := checkapi.AllStatusCodes()
	slices.Reverse(codes)
	summary := results.Summary()
	var head, rule, counts []string
	for _, c := range codes {
		head = append(head, fmt.Sprintf("%s %s", severityEmoji[c], c))
		rule = append(rule, ":-:")
		counts = append(counts, fmt.Sprint(summary[c]))
	}
	b.WriteString("### Summary\n\n")
	b.WriteString("| " + strings.Join(head, " | ") + " |\n")
	b.WriteString("|" + strings.Join(rule, "|") + "|\n")
	b.WriteString("| " + strings.Join(counts, " | ") + " |\n\n")

	organized := results.Organize()
	order := sectionOrder(results)
	for _, file := range sortedFiles(organized) {
		var body strings.Builder
		shown := 0
		sections := organized[file]
		for _, section := range orderedSections(sections, order) {
			var sb strings.Builder
			for _, res := range sections[section] {
				if res.WorstStatus() < threshold {
					continue
				}
				writeMarkdownResult(&sb, res, reg)
				shown++
			}
			if sb.Len() > 0 {
				fmt.Fprintf(&body, "#### %s\n\n%s", section, sb.String())
			}
		}
		if shown == 0 {
			continue
		}
		fmt.Fprintf(&b, "<details><summary>[%d] <b>%s</b></summary>\n<div>\n\n%s</div>\n</details>\n\n", shown, file, body.String())
	}

	if results.Len() == 0 {
		b.WriteString("No checks were run.\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func writeMarkdownResult(b *strings.Builder, res *checkapi.CheckResult, reg *checkapi.Registry) {
	worst := res.WorstStatus()
	fmt.Fprintf(b, "<details><summary>%s <b>%s</b> %s (<code>%s</code>)</summary>\n<div>\n\n",
		severityEmoji[worst], worst, res.CheckName, res.CheckID)

	rationale := res.CheckRationale
	if rationale == "" && reg != nil {
		if c, ok := reg.Check(res.CheckID); ok {
			rationale = c.Rationale
		}
	}
	if rationale != "" {
		for _, line := range strings.Split(strings.TrimSpace(rationale), "\n") {
			fmt.Fprintf(b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	for _, s := range res.Subresults {
		fmt.Fprintf(b, "* %s **%s**", severityEmoji[s.Severity], s.Severity)
		if s.Code != "" {
			fmt.Fprintf(b, " <code>%s</code>", s.Code)
		}
		if s.Message != "" {
			fmt.Fprintf(b, ": %s", strings.ReplaceAll(s.Message, "\n", "\n  "))
		}
		b.WriteString("\n")
	}
	if res.HotfixResult != nil {
		fmt.Fprintf(b, "\n_%s_\n", describeFix(res.HotfixResult))
	}
	b.WriteString("\n</div>\n</details>\n\n")
}

func (r *MarkdownReporter) Close() error { return r.w.Close() }
