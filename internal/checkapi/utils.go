package checkapi

import (
	"fmt"
	"strings"
)

const bulletListHead = 9

// BulletList formats items as a Markdown list, abbreviated unless the
// context asks for full lists.
func BulletList[T any](c *Context, items []T) string {
	lines := make([]string, 0, min(len(items), bulletListHead+1))
	for i, item := range items {
		if i >= bulletListHead && !c.FullLists {
			lines = append(lines, fmt.Sprintf("... and %d others", len(items)-bulletListHead))
			break
		}
		lines = append(lines, fmt.Sprintf("* %v", item))
	}
	return strings.Join(lines, "\n")
}

// Observation is one value taken from one member of a family, for AssertAllTheSame.
type Observation[T comparable] struct {
	Value   T
	Display string
	Label   string
}

// AssertAllTheSame passes when every observation has the same value and
// otherwise emits a single status of the given severity listing them.
func AssertAllTheSame[T comparable](c *Context, values []Observation[T], code, messageStart string, severity StatusCode) (StatusList, error) {
	same := true
	for _, v := range values {
		if v.Value != values[0].Value {
			same = false
			break
		}
	}
	if same {
		return JustOnePass()
	}
	listed := make([]string, len(values))
	for i, v := range values {
		listed[i] = fmt.Sprintf("%s: %s", v.Display, v.Label)
	}
	msg := fmt.Sprintf("%s\n\nThe following values were found:\n\n%s", messageStart, BulletList(c, listed))
	if severity == StatusFail {
		return JustOneFail(code, msg)
	}
	return JustOneWarn(code, msg)
}
