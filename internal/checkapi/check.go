package checkapi

import (
	"errors"
	"fmt"
	"time"
)

// Implementation is either CheckOne or CheckAll.
type Implementation interface {
	isImplementation()
}

// CheckOne inspects a single file.
type CheckOne func(t *Testable, c *Context) (StatusList, error)

// CheckAll inspects a whole family at once.
type CheckAll func(coll *TestableCollection, c *Context) (StatusList, error)

func (CheckOne) isImplementation() {}
func (CheckAll) isImplementation() {}

// HotfixFunc repairs a binary in place and reports whether it changed anything.
type HotfixFunc func(t *Testable) (bool, error)

// SourceFixFunc repairs a source file in place and reports whether it changed anything.
type SourceFixFunc func(s *SourceFile) (bool, error)

// CheckFlags are informational markers on a check.
type CheckFlags struct {
	Experimental bool `json:"experimental,omitempty"`
}

// Check describes one registered check.
type Check struct {
	ID        string
	Title     string
	Rationale string
	// AppliesTo is a registered FileType tag such as "TTF".
	AppliesTo      string
	Proposal       []string
	Flags          CheckFlags
	Implementation Implementation
	Hotfix         HotfixFunc
	FixSource      SourceFixFunc
	// Metadata parameterizes generic implementations; see Context.CheckMetadata.
	Metadata any
}

// IsFamilyCheck reports whether the check runs once per collection.
func (c *Check) IsFamilyCheck() bool {
	_, ok := c.Implementation.(CheckAll)
	return ok
}

// Validate reports descriptor problems caught at registration.
func (c *Check) Validate() error {
	if c.ID == "" {
		return errors.New("check has empty ID")
	}
	if c.Implementation == nil {
		return fmt.Errorf("check %s has no implementation", c.ID)
	}
	return nil
}

// Run executes the check against tt and wraps its statuses into a CheckResult.
//
// It returns nil when the implementation kind does not fit tt (a CheckOne
// against a collection or a CheckAll against a single file). Errors, skips and
// panics become single-status results.
func (c *Check) Run(tt TestableType, cx *Context, section string) (res *CheckResult) {
	var run func() (StatusList, error)
	switch impl := c.Implementation.(type) {
	case CheckOne:
		if !tt.IsSingle() {
			return nil
		}
		run = func() (StatusList, error) { return impl(tt.Testable(), cx) }
	case CheckAll:
		if tt.IsSingle() {
			return nil
		}
		run = func() (StatusList, error) { return impl(tt.Collection(), cx) }
	default:
		return nil
	}

	res = &CheckResult{
		CheckID:        c.ID,
		CheckName:      c.Title,
		CheckRationale: c.Rationale,
		Filename:       tt.Filename(),
		Section:        section,
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Subresults = StatusList{ErrorStatus("", fmt.Sprintf("check panicked: %v", r))}
		}
		res.Time = time.Since(start)
	}()

	statuses, err := run()
	res.Subresults = statusesFromOutcome(statuses, err)
	res.Subresults.ApplyOverrides(cx.Overrides)
	return res
}

func statusesFromOutcome(statuses StatusList, err error) StatusList {
	if err == nil {
		if statuses == nil {
			return StatusList{}
		}
		return statuses
	}
	var skip *SkipError
	if errors.As(err, &skip) {
		return StatusList{SkipStatus(skip.Code, skip.Message)}
	}
	return StatusList{ErrorStatus("", err.Error())}
}
