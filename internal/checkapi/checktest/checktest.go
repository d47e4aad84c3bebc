// Package checktest runs single checks outside the scheduler and asserts on
// their statuses.
package checktest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fontspector/internal/checkapi"
)

// Font wraps in-memory font bytes as a Testable.
func Font(name string, contents []byte) *checkapi.Testable {
	return checkapi.NewTestableWithContents(name, contents)
}

// Run executes check against one testable with a fresh context, applying
// config as the check's local configuration.
func Run(t testing.TB, check checkapi.Check, testable *checkapi.Testable, config map[string]any) *checkapi.CheckResult {
	t.Helper()
	return runOn(t, check, checkapi.SingleTestable(testable), config)
}

// RunFamily executes a family check against the given members.
func RunFamily(t testing.TB, check checkapi.Check, config map[string]any, members ...*checkapi.Testable) *checkapi.CheckResult {
	t.Helper()
	coll := checkapi.NewTestableCollection(members, "family")
	return runOn(t, check, checkapi.CollectionTestable(coll), config)
}

func runOn(t testing.TB, check checkapi.Check, tt checkapi.TestableType, config map[string]any) *checkapi.CheckResult {
	t.Helper()
	cx := checkapi.NewContext()
	cx.SkipNetwork = true
	userConfig := map[string]any{}
	if config != nil {
		userConfig[check.ID] = config
	}
	cx = cx.Specialize(&check, userConfig, nil, nil, checkapi.NewCache())
	res := check.Run(tt, cx, "")
	require.NotNil(t, res, "check %s does not apply to this target", check.ID)
	return res
}

// AssertPass requires every status to be Pass (or Info).
func AssertPass(t testing.TB, res *checkapi.CheckResult) {
	t.Helper()
	for _, s := range res.Subresults {
		assert.LessOrEqual(t, s.Severity, checkapi.StatusPass, "unexpected status %s", s)
	}
}

// AssertStatus requires a status with the given severity and code.
func AssertStatus(t testing.TB, res *checkapi.CheckResult, severity checkapi.StatusCode, code string) checkapi.Status {
	t.Helper()
	for _, s := range res.Subresults {
		if s.Severity == severity && s.Code == code {
			return s
		}
	}
	assert.Fail(t, "status not found", "want %s [%s], got:\n%s", severity, code, describe(res))
	return checkapi.Status{}
}

// AssertWorst requires the result's worst status.
func AssertWorst(t testing.TB, res *checkapi.CheckResult, want checkapi.StatusCode) {
	t.Helper()
	assert.Equal(t, want, res.WorstStatus(), describe(res))
}

// Hotfix applies check's hotfix to testable and requires it to succeed.
func Hotfix(t testing.TB, check checkapi.Check, testable *checkapi.Testable) bool {
	t.Helper()
	require.NotNil(t, check.Hotfix, "check %s has no hotfix", check.ID)
	changed, err := check.Hotfix(testable)
	require.NoError(t, err)
	return changed
}

func describe(res *checkapi.CheckResult) string {
	out := ""
	for _, s := range res.Subresults {
		out += fmt.Sprintf("  %s\n", s)
	}
	return out
}
