package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
	"fontspector/internal/profiles/googlefonts"
)

func init() {
	color.NoColor = true
}

func TestExitCodeForRun(t *testing.T) {
	cases := []struct {
		name      string
		fatal     bool
		worst     checkapi.StatusCode
		threshold checkapi.StatusCode
		want      int
	}{
		{"clean", false, checkapi.StatusPass, checkapi.StatusFail, ExitClean},
		{"warn below threshold", false, checkapi.StatusWarn, checkapi.StatusFail, ExitClean},
		{"fail at threshold", false, checkapi.StatusFail, checkapi.StatusFail, ExitChecksFailed},
		{"error above threshold", false, checkapi.StatusError, checkapi.StatusFail, ExitChecksFailed},
		{"lowered threshold", false, checkapi.StatusWarn, checkapi.StatusWarn, ExitChecksFailed},
		{"fatal wins", true, checkapi.StatusPass, checkapi.StatusFail, ExitFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeForRun(tc.fatal, tc.worst, tc.threshold); got != tc.want {
				t.Fatalf("exitCodeForRun = %d, want %d", got, tc.want)
			}
		})
	}
}

type runOutput struct {
	code   int
	stdout string
	stderr string
}

func runEngine(t *testing.T, reg *checkapi.Registry, mutate func(*config.Config), inputs ...string) runOutput {
	t.Helper()
	cfg := config.New()
	cfg.Profile.Name = "test"
	cfg.Run.Jobs = 1
	cfg.Inputs = inputs
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := New(reg, nil, &stdout, &stderr).Run(context.Background(), cfg)
	return runOutput{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func quiet(cfg *config.Config) { cfg.Output.Quiet = true }

func TestEngineRun_Clean(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	reg := testRegistry(t, constCheck("test/pass", checkapi.Pass()))

	out := runEngine(t, reg, nil, font)
	if out.code != ExitClean {
		t.Fatalf("exit = %d, want 0; stderr:\n%s", out.code, out.stderr)
	}
	for _, want := range []string{"Running 1 check on 1 file in 1 family", "Ran 1 checks in", "Summary:", "PASS: 1"} {
		if !strings.Contains(out.stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, out.stdout)
		}
	}
}

func TestEngineRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))

	cases := []struct {
		name   string
		check  checkapi.Check
		mutate func(*config.Config)
		want   int
	}{
		{"fail", constCheck("test/x", checkapi.Fail("bad", "bad")), quiet, ExitChecksFailed},
		{"fail below raised threshold", constCheck("test/x", checkapi.Fail("bad", "bad")), func(c *config.Config) {
			c.Output.Quiet = true
			c.Run.ErrorCodeOn = "fatal"
		}, ExitClean},
		{"warn", constCheck("test/x", checkapi.Warn("meh", "meh")), quiet, ExitClean},
		{"warn at lowered threshold", constCheck("test/x", checkapi.Warn("meh", "meh")), func(c *config.Config) {
			c.Output.Quiet = true
			c.Run.ErrorCodeOn = "WARN"
		}, ExitChecksFailed},
		{"skip", funcCheck("test/x", func(*checkapi.Testable, *checkapi.Context) (checkapi.StatusList, error) {
			return nil, checkapi.Skip("nothing-to-do", "no")
		}), quiet, ExitClean},
		{"check error", funcCheck("test/x", func(*checkapi.Testable, *checkapi.Context) (checkapi.StatusList, error) {
			return nil, errors.New("exploded")
		}), quiet, ExitChecksFailed},
		{"panic", funcCheck("test/x", func(*checkapi.Testable, *checkapi.Context) (checkapi.StatusList, error) {
			panic("boom")
		}), quiet, ExitChecksFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := runEngine(t, testRegistry(t, tc.check), tc.mutate, font)
			if out.code != tc.want {
				t.Fatalf("exit = %d, want %d; stderr:\n%s", out.code, tc.want, out.stderr)
			}
			if out.stdout != "" {
				t.Fatalf("quiet run wrote to stdout:\n%s", out.stdout)
			}
		})
	}
}

type jsonDoc struct {
	WorstStatus string `json:"worst_status"`
	Results     []struct {
		CheckID    string `json:"check_id"`
		Filename   string `json:"filename"`
		Subresults []struct {
			Severity string `json:"severity"`
			Code     string `json:"code"`
			Message  string `json:"message"`
		} `json:"subresults"`
	} `json:"results"`
}

func decodeJSON(t *testing.T, s string) jsonDoc {
	t.Helper()
	var doc jsonDoc
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, s)
	}
	return doc
}

func jsonToStdout(cfg *config.Config) { cfg.Output.JSON = config.Stdout }

func TestEngineRun_JSONToStdout(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	reg := testRegistry(t, constCheck("test/warn", checkapi.Warn("meh", "not great")))

	out := runEngine(t, reg, jsonToStdout, font)
	if out.code != ExitClean {
		t.Fatalf("exit = %d; stderr:\n%s", out.code, out.stderr)
	}
	if strings.Contains(out.stdout, "Running") || strings.Contains(out.stdout, "Summary") {
		t.Fatalf("terminal output mixed into the JSON stream:\n%s", out.stdout)
	}
	doc := decodeJSON(t, out.stdout)
	if doc.WorstStatus != "WARN" || len(doc.Results) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	if got := doc.Results[0].Subresults[0].Code; got != "meh" {
		t.Fatalf("code = %q, want meh", got)
	}
}

func TestEngineRun_UserConfiguration(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	cfgFile := writeFile(t, dir, "fontspector.toml", []byte(`
exclude_checks = ["skipped"]
overrides = [{ code = "too-big", status = "WARN", reason = "CJK font" }]

["test/limit"]
LIMIT = 3
`))

	limit := funcCheck("test/limit", func(tb *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
		n, ok := cx.ConfigNumber("test/limit", "LIMIT")
		if !ok {
			return checkapi.JustOneSkip("no-limit", "LIMIT not configured")
		}
		if len(tb.Contents()) > int(n) {
			return checkapi.JustOneFail("too-big", "over the limit")
		}
		return checkapi.JustOnePass()
	})
	reg := testRegistry(t, limit, constCheck("test/skipped", checkapi.Fatal("never", "never")))

	out := runEngine(t, reg, func(c *config.Config) {
		jsonToStdout(c)
		c.Profile.Configuration = cfgFile
	}, font)
	if out.code != ExitClean {
		t.Fatalf("exit = %d, want 0 after override; stderr:\n%s", out.code, out.stderr)
	}
	doc := decodeJSON(t, out.stdout)
	if len(doc.Results) != 1 {
		t.Fatalf("results = %d, want the excluded check dropped", len(doc.Results))
	}
	st := doc.Results[0].Subresults[0]
	if st.Severity != "WARN" || st.Code != "too-big" || st.Message != "over the limit (Overriden: CJK font)" {
		t.Fatalf("status = %+v", st)
	}
}

func TestEngineRun_CheckIDFilter(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	reg := testRegistry(t,
		constCheck("test/keep", checkapi.Pass()),
		constCheck("test/drop", checkapi.Fail("x", "x")),
	)
	out := runEngine(t, reg, func(c *config.Config) {
		jsonToStdout(c)
		c.Profile.CheckIDs = []string{"keep"}
	}, font)
	if out.code != ExitClean {
		t.Fatalf("exit = %d", out.code)
	}
	if doc := decodeJSON(t, out.stdout); len(doc.Results) != 1 || doc.Results[0].CheckID != "test/keep" {
		t.Fatalf("results = %+v", doc.Results)
	}
}

func TestEngineRun_FamilyAndFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "fam/A-Regular.ttf", []byte("a"))
	b := writeFile(t, dir, "fam/A-Bold.ttf", []byte("bb"))

	same := familyCheck("test/same_size", func(coll *checkapi.TestableCollection, _ *checkapi.Context) (checkapi.StatusList, error) {
		sizes := map[int]bool{}
		for _, tt := range coll.Testables {
			sizes[len(tt.Contents())] = true
		}
		if len(sizes) > 1 {
			return checkapi.JustOneWarn("mismatch", "sizes differ")
		}
		return checkapi.JustOnePass()
	})
	reg := testRegistry(t, constCheck("test/file", checkapi.Pass()), same)

	out := runEngine(t, reg, jsonToStdout, filepath.Dir(a))
	if out.code != ExitClean {
		t.Fatalf("exit = %d; stderr:\n%s", out.code, out.stderr)
	}
	doc := decodeJSON(t, out.stdout)
	if len(doc.Results) != 3 {
		t.Fatalf("results = %d, want 2 file results and 1 family result", len(doc.Results))
	}
	var family, files int
	for _, r := range doc.Results {
		switch r.Filename {
		case "":
			family++
			if r.Subresults[0].Code != "mismatch" {
				t.Fatalf("family result = %+v", r)
			}
		case a, b:
			files++
		}
	}
	if family != 1 || files != 2 {
		t.Fatalf("family=%d files=%d", family, files)
	}
}

func TestEngineRun_ProfileFile(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	profile := writeFile(t, dir, "vendor.toml", []byte(`
include_profiles = ["test"]

[sections]
"Vendor" = ["vendor/unwritten"]
`))
	reg := testRegistry(t, constCheck("test/pass", checkapi.Pass()))

	out := runEngine(t, reg, func(c *config.Config) {
		jsonToStdout(c)
		c.Profile.Name = profile
	}, font)
	if out.code != ExitChecksFailed {
		t.Fatalf("exit = %d, want 1 for an unregistered check; stderr:\n%s", out.code, out.stderr)
	}
	doc := decodeJSON(t, out.stdout)
	var unresolved bool
	for _, r := range doc.Results {
		if r.CheckID == "vendor/unwritten" && r.Subresults[0].Severity == "ERROR" {
			unresolved = true
		}
	}
	if !unresolved || len(doc.Results) != 2 {
		t.Fatalf("results = %+v", doc.Results)
	}
}

func TestEngineRun_Hotfix(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 2))
	reg := testRegistry(t, googlefonts.FSType)

	out := runEngine(t, reg, func(c *config.Config) {
		quiet(c)
		c.Fix.Hotfix = true
	}, font)
	// the run reports what was found before fixing
	if out.code != ExitChecksFailed {
		t.Fatalf("exit = %d, want 1", out.code)
	}
	if got := readFsType(t, font); got != 0 {
		t.Fatalf("fsType = %d after --hotfix, want 0", got)
	}
}

func TestEngineRun_FatalSetup(t *testing.T) {
	dir := t.TempDir()
	font := writeFile(t, dir, "Foo-Regular.ttf", []byte("font"))
	reg := testRegistry(t, constCheck("test/pass", checkapi.Pass()))

	cases := []struct {
		name   string
		mutate func(*config.Config)
		inputs []string
		want   string
	}{
		{"missing input", nil, []string{filepath.Join(dir, "Missing.ttf")}, "file not found"},
		{"unknown profile", func(c *config.Config) { c.Profile.Name = "nope" }, []string{font}, `unknown profile "nope" (available: test)`},
		{"missing profile file", func(c *config.Config) { c.Profile.Name = filepath.Join(dir, "gone.toml") }, []string{font}, "gone.toml"},
		{"bad configuration", func(c *config.Config) { c.Profile.Configuration = filepath.Join(dir, "conf.ini") }, []string{font}, "loading configuration"},
		{"no inputs", nil, nil, "no input files"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.name == "bad configuration" {
				writeFile(t, dir, "conf.ini", []byte("x=1"))
			}
			out := runEngine(t, reg, tc.mutate, tc.inputs...)
			if out.code != ExitFatal {
				t.Fatalf("exit = %d, want 2", out.code)
			}
			if !strings.Contains(out.stderr, tc.want) {
				t.Fatalf("stderr missing %q:\n%s", tc.want, out.stderr)
			}
		})
	}
}

func TestEngine_LoadPluginsContinuesOnError(t *testing.T) {
	reg := checkapi.NewRegistry()
	e := New(reg, nil, nil, nil)
	e.LoadPlugins([]string{filepath.Join(t.TempDir(), "missing.so")})
	if len(reg.ProfileNames()) != 0 {
		t.Fatalf("nothing should have been registered")
	}
}
