package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"fontspector/internal/checkapi"
	"fontspector/internal/profiles/googlefonts"
	"fontspector/internal/sfntio"
)

const fsTypeOffset = 8

func fontWithFsType(t *testing.T, v uint16) []byte {
	t.Helper()
	f, err := sfntio.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := f.SetUint16("OS/2", fsTypeOffset, v); err != nil {
		t.Fatalf("SetUint16 error: %v", err)
	}
	b, err := f.Bytes()
	if err != nil {
		t.Fatalf("Bytes error: %v", err)
	}
	return b
}

func readFsType(t *testing.T, path string) uint16 {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	f, err := sfntio.Parse(b)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	v, err := f.Uint16("OS/2", fsTypeOffset)
	if err != nil {
		t.Fatalf("Uint16 error: %v", err)
	}
	return v
}

// runChecks plans and executes every check of the test profile on files.
func runChecks(t *testing.T, reg *checkapi.Registry, files ...string) *checkapi.RunResults {
	t.Helper()
	colls, err := GroupInputs(files)
	if err != nil {
		t.Fatalf("GroupInputs error: %v", err)
	}
	profile, _ := reg.Profile("test")
	plan, err := BuildPlan(reg, profile, colls, PlanOptions{})
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	s, _ := NewScheduler(1, nil)
	results, err := s.Execute(context.Background(), plan.Items)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	return checkapi.NewRunResults(results)
}

func TestFixer_Hotfix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 4))
	reg := testRegistry(t, googlefonts.FSType)

	rr := runChecks(t, reg, path)
	if rr.WorstStatus() != checkapi.StatusFail {
		t.Fatalf("worst = %s, want FAIL before fixing", rr.WorstStatus())
	}

	if err := NewFixer(reg, nil).Fix(rr, FixOptions{Hotfix: true}); err != nil {
		t.Fatalf("Fix error: %v", err)
	}
	if got := readFsType(t, path); got != 0 {
		t.Fatalf("fsType on disk = %d, want 0", got)
	}
	fixed := rr.Results[0].HotfixResult
	if fixed == nil || fixed.Outcome != checkapi.FixApplied {
		t.Fatalf("HotfixResult = %+v, want applied", fixed)
	}
}

func TestFixer_SkipsPassingResults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 0))
	before, _ := os.ReadFile(path)
	reg := testRegistry(t, googlefonts.FSType)

	rr := runChecks(t, reg, path)
	if err := NewFixer(reg, nil).Fix(rr, FixOptions{Hotfix: true}); err != nil {
		t.Fatalf("Fix error: %v", err)
	}
	if rr.Results[0].HotfixResult != nil {
		t.Fatalf("passing result got a fix outcome")
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("file rewritten although nothing needed fixing")
	}
}

func TestFixer_SourceFix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 4))
	source := writeFile(t, dir, "sources/Go.glyphs", []byte(`{
.formatVersion = 3;
familyName = "Go";
customParameters = (
{
name = fsType;
value = (
1
);
}
);
}
`))
	reg := testRegistry(t, googlefonts.FSType)
	rr := runChecks(t, reg, path)

	err := NewFixer(reg, nil).Fix(rr, FixOptions{
		FixSources: true,
		SourceMap:  map[string]string{"Go-Regular.ttf": source},
	})
	if err != nil {
		t.Fatalf("Fix error: %v", err)
	}
	if got := readFsType(t, path); got != 4 {
		t.Fatalf("binary changed without --hotfix: fsType = %d", got)
	}
	g, err := checkapi.LoadGlyphs(source)
	if err != nil {
		t.Fatalf("LoadGlyphs error: %v", err)
	}
	v, _ := g.CustomParameter("fsType")
	if arr, _ := v.([]any); len(arr) != 0 {
		t.Fatalf("source fsType = %v, want empty list", v)
	}
	if res := rr.Results[0].HotfixResult; res == nil || res.Outcome != checkapi.FixApplied {
		t.Fatalf("HotfixResult = %+v", res)
	}
}

func TestFixer_MissingSourceMapEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 4))
	reg := testRegistry(t, googlefonts.FSType)
	rr := runChecks(t, reg, path)

	if err := NewFixer(reg, nil).Fix(rr, FixOptions{FixSources: true}); err != nil {
		t.Fatalf("Fix error: %v", err)
	}
	if rr.Results[0].HotfixResult != nil {
		t.Fatalf("no source was available, want no fix outcome")
	}
}

func TestFixer_UnloadableSourceKeepsHotfixes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 4))
	hotOnly := constCheck("test/hot-only", checkapi.Warn("w", "warn"))
	hotOnly.Hotfix = func(*checkapi.Testable) (bool, error) { return false, nil }
	reg := testRegistry(t, googlefonts.FSType, hotOnly)
	rr := runChecks(t, reg, path)

	err := NewFixer(reg, nil).Fix(rr, FixOptions{
		Hotfix:     true,
		FixSources: true,
		SourceMap:  map[string]string{"Go-Regular.ttf": filepath.Join(dir, "missing.glyphs")},
	})
	if err == nil || !strings.Contains(err.Error(), "missing.glyphs") {
		t.Fatalf("Fix error = %v, want the source load failure", err)
	}
	if got := readFsType(t, path); got != 0 {
		t.Fatalf("fsType on disk = %d, want 0: hotfix skipped", got)
	}
	outcomes := map[string]*checkapi.FixResult{}
	for _, r := range rr.Results {
		outcomes[r.CheckID] = r.HotfixResult
	}
	if res := outcomes[googlefonts.FSType.ID]; res == nil || res.Outcome != checkapi.FixFailed {
		t.Fatalf("fstype HotfixResult = %+v, want the source error", res)
	}
	if res := outcomes["test/hot-only"]; res == nil || res.Outcome != checkapi.FixApplied {
		t.Fatalf("hot-only HotfixResult = %+v, want applied", res)
	}
}

func TestFixer_LastOutcomeWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.ttf", []byte("font"))
	check := constCheck("test/both", checkapi.Warn("w", "warn"))
	check.Hotfix = func(*checkapi.Testable) (bool, error) { return false, errors.New("hotfix broke") }
	check.FixSource = func(*checkapi.SourceFile) (bool, error) { return false, nil }
	source := writeFile(t, dir, "A.glyphs", []byte("{\nfamilyName = \"A\";\n}\n"))
	reg := testRegistry(t, check)
	rr := runChecks(t, reg, path)

	err := NewFixer(reg, nil).Fix(rr, FixOptions{Hotfix: true, FixSources: true, SourceMap: map[string]string{path: source}})
	if err != nil {
		t.Fatalf("Fix error: %v", err)
	}
	if res := rr.Results[0].HotfixResult; res == nil || res.Outcome != checkapi.FixApplied {
		t.Fatalf("HotfixResult = %+v, want the source fix outcome", res)
	}
}

func TestApplyHotfixes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Go-Regular.ttf", fontWithFsType(t, 8))
	reg := testRegistry(t, googlefonts.FSType, constCheck("test/nofix", checkapi.Pass()))

	t.Run("writes to the output path", func(t *testing.T) {
		out := filepath.Join(dir, "fixed.ttf")
		outcomes, err := ApplyHotfixes(reg, path, []string{"test/nofix", googlefonts.FSType.ID}, out)
		if err != nil {
			t.Fatalf("ApplyHotfixes error: %v", err)
		}
		if len(outcomes) != 1 || !outcomes[0].Changed || outcomes[0].CheckID != googlefonts.FSType.ID {
			t.Fatalf("outcomes = %+v", outcomes)
		}
		if got := readFsType(t, out); got != 0 {
			t.Fatalf("fixed fsType = %d, want 0", got)
		}
		if got := readFsType(t, path); got != 8 {
			t.Fatalf("input modified: fsType = %d", got)
		}
	})

	t.Run("unknown check", func(t *testing.T) {
		_, err := ApplyHotfixes(reg, path, []string{"nope/nope"}, "")
		if err == nil || !strings.Contains(err.Error(), "nope/nope") {
			t.Fatalf("ApplyHotfixes error = %v, want unknown check", err)
		}
	})

	t.Run("in place", func(t *testing.T) {
		if _, err := ApplyHotfixes(reg, path, []string{googlefonts.FSType.ID}, ""); err != nil {
			t.Fatalf("ApplyHotfixes error: %v", err)
		}
		if got := readFsType(t, path); got != 0 {
			t.Fatalf("fsType = %d, want 0", got)
		}
	})
}
