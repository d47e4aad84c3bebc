package engine

import (
	"os"
	"path/filepath"
	"testing"

	"fontspector/internal/checkapi"
)

// writeFile creates path (and its parents) under dir with the given contents.
func writeFile(t *testing.T, dir, path string, contents []byte) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(full, contents, 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return full
}

func constCheck(id string, statuses ...checkapi.Status) checkapi.Check {
	return checkapi.Check{
		ID:        id,
		Title:     "Check " + id,
		AppliesTo: "TTF",
		Implementation: checkapi.CheckOne(func(*checkapi.Testable, *checkapi.Context) (checkapi.StatusList, error) {
			return statuses, nil
		}),
	}
}

func funcCheck(id string, fn checkapi.CheckOne) checkapi.Check {
	return checkapi.Check{ID: id, Title: "Check " + id, AppliesTo: "TTF", Implementation: fn}
}

func familyCheck(id string, fn checkapi.CheckAll) checkapi.Check {
	return checkapi.Check{ID: id, Title: "Check " + id, AppliesTo: "TTF", Implementation: fn}
}

// testRegistry registers checks into a single-section profile named "test".
func testRegistry(t *testing.T, checks ...checkapi.Check) *checkapi.Registry {
	t.Helper()
	reg := checkapi.NewRegistry()
	b := checkapi.NewProfileBuilder().AddSection("Test Checks")
	for _, c := range checks {
		b.AddAndRegisterCheck(c)
	}
	if err := b.Build("test", reg); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return reg
}
