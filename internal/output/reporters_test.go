package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
)

func init() {
	color.NoColor = true
}

func sampleResults() *checkapi.RunResults {
	return checkapi.NewRunResults([]*checkapi.CheckResult{
		{
			CheckID:    "universal/file_size",
			CheckName:  "Ensure fonts are not too large",
			Filename:   "fonts/Foo-Regular.ttf",
			Section:    "Universal",
			Subresults: checkapi.StatusList{checkapi.Fail("massive-font", "Font file is 12MB")},
		},
		{
			CheckID:      "googlefonts/fstype",
			CheckName:    "Checking OS/2 fsType",
			Filename:     "fonts/Foo-Regular.ttf",
			Section:      "Licensing",
			Subresults:   checkapi.StatusList{checkapi.Warn("drm", "fsType is 4")},
			HotfixResult: checkapi.Fixed(),
		},
		{
			CheckID:    "opentype/required_tables",
			CheckName:  "Font contains all required tables?",
			Filename:   "fonts/Foo-Regular.ttf",
			Section:    "OpenType",
			Subresults: checkapi.StatusList{checkapi.Pass()},
		},
		{
			CheckID:    "opentype/family/equal_unitsperem",
			CheckName:  "Fonts have equal units per em?",
			Section:    "OpenType",
			Subresults: checkapi.StatusList{checkapi.Warn("mismatch", "2048 vs 1000")},
		},
	})
}

func TestTerminalReporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.New()

	r := NewTerminalReporter(&buf)
	if err := r.Report(sampleResults(), cfg, nil); err != nil {
		t.Fatalf("Report error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Testing: fonts/Foo-Regular.ttf",
		"Testing: All fonts",
		"Section: Universal",
		">> universal/file_size",
		"FAIL [massive-font]: Font file is 12MB",
		"Result: WARN (fixed)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("terminal output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "opentype/required_tables") {
		t.Fatalf("PASS result shown below the WARN threshold:\n%s", out)
	}
	if strings.Index(out, "All fonts") > strings.Index(out, "Foo-Regular.ttf") {
		t.Fatalf("family results should come first:\n%s", out)
	}
	if strings.Index(out, "Section: Universal") > strings.Index(out, "Section: Licensing") {
		t.Fatalf("sections should follow run order, not alphabetical:\n%s", out)
	}
}

func TestTerminalReporter_Succinct(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.New()
	cfg.Output.Succinct = true
	cfg.Output.LogLevel = "FAIL"

	if err := NewTerminalReporter(&buf).Report(sampleResults(), cfg, nil); err != nil {
		t.Fatalf("Report error: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	want := "fonts/Foo-Regular.ttf: universal/file_size FAIL [massive-font]"
	if got != want {
		t.Fatalf("succinct output = %q, want %q", got, want)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleResults().Summary()); err != nil {
		t.Fatalf("WriteSummary error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FAIL: 1", "WARN: 2", "PASS: 1", "ERROR: 0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
	if strings.Index(out, "ERROR") > strings.Index(out, "SKIP") {
		t.Fatalf("summary should list the most severe first: %s", out)
	}
}

func TestJSONReporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.json")
	r, err := NewJSONReporter(path, nil)
	if err != nil {
		t.Fatalf("NewJSONReporter error: %v", err)
	}
	if err := r.Report(sampleResults(), config.New(), nil); err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	var doc struct {
		RunID       string         `json:"run_id"`
		WorstStatus string         `json:"worst_status"`
		Summary     map[string]int `json:"summary"`
		Results     []struct {
			CheckID      string `json:"check_id"`
			HotfixResult *struct {
				Outcome string `json:"outcome"`
			} `json:"hotfix_result"`
			Subresults []struct {
				Severity string `json:"severity"`
				Code     string `json:"code"`
			} `json:"subresults"`
		} `json:"results"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, b)
	}
	if doc.RunID == "" {
		t.Fatalf("missing run_id")
	}
	if doc.WorstStatus != "FAIL" {
		t.Fatalf("worst_status = %q, want FAIL", doc.WorstStatus)
	}
	if doc.Summary["WARN"] != 2 {
		t.Fatalf("summary = %v", doc.Summary)
	}
	if len(doc.Results) != 4 {
		t.Fatalf("results = %d, want 4 (JSON is unfiltered)", len(doc.Results))
	}
	var fstype bool
	for _, res := range doc.Results {
		if res.CheckID == "googlefonts/fstype" {
			fstype = true
			if res.HotfixResult == nil || res.HotfixResult.Outcome != "FIXED" {
				t.Fatalf("fstype hotfix_result = %+v", res.HotfixResult)
			}
			if res.Subresults[0].Severity != "WARN" || res.Subresults[0].Code != "drm" {
				t.Fatalf("fstype subresults = %+v", res.Subresults)
			}
		}
	}
	if !fstype {
		t.Fatalf("fstype result missing")
	}
}

func TestJSONReporter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewJSONReporter(config.Stdout, &buf)
	if err != nil {
		t.Fatalf("NewJSONReporter error: %v", err)
	}
	if err := r.Report(checkapi.NewRunResults(nil), config.New(), nil); err != nil {
		t.Fatalf("Report error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Fatalf("empty run should encode an empty results array:\n%s", buf.String())
	}
}

func TestMarkdownReporter(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewMarkdownReporter(config.Stdout, &buf)
	if err != nil {
		t.Fatalf("NewMarkdownReporter error: %v", err)
	}

	reg := checkapi.NewRegistry()
	if err := reg.RegisterCheck(checkapi.Check{
		ID:             "universal/file_size",
		Title:          "Ensure fonts are not too large",
		Rationale:      "Large fonts are slow to load.",
		AppliesTo:      "TTF",
		Implementation: checkapi.CheckOne(func(*checkapi.Testable, *checkapi.Context) (checkapi.StatusList, error) { return checkapi.JustOnePass() }),
	}); err != nil {
		t.Fatalf("RegisterCheck error: %v", err)
	}

	if err := r.Report(sampleResults(), config.New(), reg); err != nil {
		t.Fatalf("Report error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Fontspector report",
		"### Summary",
		"<b>fonts/Foo-Regular.ttf</b>",
		"#### Universal",
		"<code>universal/file_size</code>",
		"> Large fonts are slow to load.",
		"**FAIL** <code>massive-font</code>: Font file is 12MB",
		"_fixed_",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "required_tables") {
		t.Fatalf("PASS result should be filtered:\n%s", out)
	}
}
