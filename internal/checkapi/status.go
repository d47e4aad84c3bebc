package checkapi

import (
	"fmt"
	"strings"
)

// StatusCode is the severity of a single check subresult.
//
// Codes are totally ordered: Skip < Info < Pass < Warn < Fail < Fatal < Error.
type StatusCode int

const (
	StatusSkip StatusCode = iota
	StatusInfo
	StatusPass
	StatusWarn
	StatusFail
	StatusFatal
	StatusError
)

var statusNames = [...]string{"SKIP", "INFO", "PASS", "WARN", "FAIL", "FATAL", "ERROR"}

// AllStatusCodes lists every severity in ascending order.
func AllStatusCodes() []StatusCode {
	return []StatusCode{StatusSkip, StatusInfo, StatusPass, StatusWarn, StatusFail, StatusFatal, StatusError}
}

func (s StatusCode) String() string {
	if s < StatusSkip || s > StatusError {
		return fmt.Sprintf("StatusCode(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatusCode accepts the upper- or lower-case severity name.
func ParseStatusCode(v string) (StatusCode, error) {
	name := strings.ToUpper(strings.TrimSpace(v))
	for i, n := range statusNames {
		if n == name {
			return StatusCode(i), nil
		}
	}
	return StatusSkip, fmt.Errorf("invalid status %q (allowed: %s)", v, strings.Join(statusNames[:], ", "))
}

func (s StatusCode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StatusCode) UnmarshalText(b []byte) error {
	code, err := ParseStatusCode(string(b))
	if err != nil {
		return err
	}
	*s = code
	return nil
}

// Status is one diagnostic record emitted by a check.
type Status struct {
	Severity StatusCode `json:"severity"`
	Code     string     `json:"code,omitempty"`
	Message  string     `json:"message,omitempty"`
	Metadata []Metadata `json:"metadata,omitempty"`
}

// StatusList is what a check implementation returns.
type StatusList []Status

func newStatus(severity StatusCode, code, message string) Status {
	return Status{Severity: severity, Code: code, Message: message}
}

func Pass() Status { return Status{Severity: StatusPass} }

func Info(code, message string) Status { return newStatus(StatusInfo, code, message) }

func Warn(code, message string) Status { return newStatus(StatusWarn, code, message) }

func Fail(code, message string) Status { return newStatus(StatusFail, code, message) }

func Fatal(code, message string) Status { return newStatus(StatusFatal, code, message) }

func SkipStatus(code, message string) Status { return newStatus(StatusSkip, code, message) }

// ErrorStatus reports an infrastructure fault, not a font defect.
func ErrorStatus(code, message string) Status { return newStatus(StatusError, code, message) }

func JustOnePass() (StatusList, error) { return StatusList{Pass()}, nil }

func JustOneInfo(code, message string) (StatusList, error) {
	return StatusList{Info(code, message)}, nil
}

func JustOneWarn(code, message string) (StatusList, error) {
	return StatusList{Warn(code, message)}, nil
}

func JustOneFail(code, message string) (StatusList, error) {
	return StatusList{Fail(code, message)}, nil
}

func JustOneFatal(code, message string) (StatusList, error) {
	return StatusList{Fatal(code, message)}, nil
}

func JustOneSkip(code, message string) (StatusList, error) {
	return StatusList{SkipStatus(code, message)}, nil
}

// WithMetadata returns a copy of s carrying the extra metadata items.
func (s Status) WithMetadata(md ...Metadata) Status {
	s.Metadata = append(append([]Metadata(nil), s.Metadata...), md...)
	return s
}

func (s Status) String() string {
	var b strings.Builder
	b.WriteString(s.Severity.String())
	if s.Code != "" {
		fmt.Fprintf(&b, " [%s]", s.Code)
	}
	if s.Message != "" {
		b.WriteString(": ")
		b.WriteString(s.Message)
	}
	return b.String()
}

// Override forces the severity of statuses carrying Code.
type Override struct {
	Code   string     `json:"code" toml:"code" yaml:"code"`
	Status StatusCode `json:"status" toml:"status" yaml:"status"`
	Reason string     `json:"reason" toml:"reason" yaml:"reason"`
}

func (o Override) suffix() string {
	return fmt.Sprintf(" (Overriden: %s)", o.Reason)
}

// ApplyOverride rewrites s using the first override matching its code.
// Applying the same overrides again leaves the status unchanged.
func (s *Status) ApplyOverride(overrides []Override) {
	if s.Code == "" {
		return
	}
	for _, o := range overrides {
		if o.Code != s.Code {
			continue
		}
		s.Severity = o.Status
		msg := s.Message
		if msg == "" {
			msg = "No original message"
		}
		if !strings.HasSuffix(msg, o.suffix()) {
			msg += o.suffix()
		}
		s.Message = msg
		return
	}
}

// ApplyOverrides rewrites every status in place.
func (l StatusList) ApplyOverrides(overrides []Override) {
	if len(overrides) == 0 {
		return
	}
	for i := range l {
		l[i].ApplyOverride(overrides)
	}
}

// WorstStatus returns the highest severity in the list, or Pass when empty.
func (l StatusList) WorstStatus() StatusCode {
	if len(l) == 0 {
		return StatusPass
	}
	worst := l[0].Severity
	for _, s := range l[1:] {
		worst = max(worst, s.Severity)
	}
	return worst
}
