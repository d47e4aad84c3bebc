package output

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
)

var severityColors = map[checkapi.StatusCode]*color.Color{
	checkapi.StatusSkip:  color.New(color.FgBlue),
	checkapi.StatusInfo:  color.New(color.FgCyan),
	checkapi.StatusPass:  color.New(color.FgGreen),
	checkapi.StatusWarn:  color.New(color.FgYellow),
	checkapi.StatusFail:  color.New(color.FgRed),
	checkapi.StatusFatal: color.New(color.FgHiRed, color.Bold),
	checkapi.StatusError: color.New(color.FgMagenta, color.Bold),
}

func colorSeverity(s checkapi.StatusCode) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(s.String())
	}
	return s.String()
}

// TerminalReporter prints results grouped by file and section.
type TerminalReporter struct {
	w io.Writer
}

func NewTerminalReporter(w io.Writer) *TerminalReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalReporter{w: w}
}

func (r *TerminalReporter) Report(results *checkapi.RunResults, cfg *config.Config, _ *checkapi.Registry) error {
	threshold := cfg.ReportThreshold()
	organized := results.Organize()
	order := sectionOrder(results)
	bold := color.New(color.Bold)

	for _, file := range sortedFiles(organized) {
		sections := organized[file]
		fileHeaderPrinted := false
		for _, section := range orderedSections(sections, order) {
			sectionHeaderPrinted := false
			for _, res := range sections[section] {
				if res.WorstStatus() < threshold {
					continue
				}
				if cfg.Output.Succinct {
					if err := r.writeSuccinct(file, res); err != nil {
						return err
					}
					continue
				}
				if !fileHeaderPrinted {
					if _, err := fmt.Fprintf(r.w, "Testing: %s\n", bold.Sprint(file)); err != nil {
						return err
					}
					fileHeaderPrinted = true
				}
				if !sectionHeaderPrinted {
					if _, err := fmt.Fprintf(r.w, "  Section: %s\n", section); err != nil {
						return err
					}
					sectionHeaderPrinted = true
				}
				if err := r.writeResult(res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *TerminalReporter) writeResult(res *checkapi.CheckResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n>> %s\n", color.New(color.Bold).Sprint(res.CheckID))
	if res.CheckName != "" && res.CheckName != res.CheckID {
		fmt.Fprintf(&b, "   %s\n", res.CheckName)
	}
	for _, s := range res.Subresults {
		fmt.Fprintf(&b, "   %s", colorSeverity(s.Severity))
		if s.Code != "" {
			fmt.Fprintf(&b, " [%s]", s.Code)
		}
		if s.Message != "" {
			b.WriteString(": ")
			b.WriteString(indentContinuation(s.Message, "      "))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "   Result: %s", colorSeverity(res.WorstStatus()))
	if res.HotfixResult != nil {
		fmt.Fprintf(&b, " (%s)", describeFix(res.HotfixResult))
	}
	b.WriteString("\n\n")
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TerminalReporter) writeSuccinct(file string, res *checkapi.CheckResult) error {
	codes := make([]string, 0, len(res.Subresults))
	for _, s := range res.Subresults {
		if s.Code != "" && !slices.Contains(codes, s.Code) {
			codes = append(codes, s.Code)
		}
	}
	line := fmt.Sprintf("%s: %s %s", file, res.CheckID, colorSeverity(res.WorstStatus()))
	if len(codes) > 0 {
		line += " [" + strings.Join(codes, ", ") + "]"
	}
	if res.HotfixResult != nil {
		line += " (" + describeFix(res.HotfixResult) + ")"
	}
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func (r *TerminalReporter) Close() error { return nil }

func describeFix(f *checkapi.FixResult) string {
	if f.Outcome == checkapi.FixFailed {
		return "fix failed: " + f.Message
	}
	return "fixed"
}

func indentContinuation(msg, indent string) string {
	return strings.ReplaceAll(strings.TrimRight(msg, "\n"), "\n", "\n"+indent)
}

// WriteSummary prints the severity histogram, most severe first.
func WriteSummary(w io.Writer, summary map[checkapi.StatusCode]int) error {
	codes := checkapi.AllStatusCodes()
	slices.Reverse(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s: %d", colorSeverity(code), summary[code]))
	}
	_, err := fmt.Fprintf(w, "Summary:\n  %s\n", strings.Join(parts, "  "))
	return err
}

// sortedFiles orders file keys with the family-level bucket first.
func sortedFiles[V any](m map[string]V) []string {
	keys := sortedKeys(m)
	if i := slices.Index(keys, checkapi.AllFontsLabel); i > 0 {
		keys = append([]string{checkapi.AllFontsLabel}, slices.Delete(keys, i, i+1)...)
	}
	return keys
}

// sectionOrder ranks sections by first appearance in the run, which follows
// the profile's section order.
func sectionOrder(results *checkapi.RunResults) map[string]int {
	order := map[string]int{}
	for _, res := range results.Results {
		if _, ok := order[res.Section]; !ok {
			order[res.Section] = len(order)
		}
	}
	return order
}

func orderedSections[V any](m map[string]V, order map[string]int) []string {
	keys := sortedKeys(m)
	slices.SortStableFunc(keys, func(a, b string) int {
		return order[a] - order[b]
	})
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
