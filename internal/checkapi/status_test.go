package checkapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusCode_TotalOrder(t *testing.T) {
	codes := AllStatusCodes()
	for i, a := range codes {
		for j, b := range codes {
			if i == j {
				continue
			}
			if (a < b) == (b < a) {
				t.Fatalf("%s and %s are not strictly ordered", a, b)
			}
			if (i < j) != (a < b) {
				t.Fatalf("ordering of %s and %s disagrees with declaration order", a, b)
			}
		}
	}
	if !(StatusSkip < StatusInfo && StatusInfo < StatusPass && StatusPass < StatusWarn &&
		StatusWarn < StatusFail && StatusFail < StatusFatal && StatusFatal < StatusError) {
		t.Fatal("unexpected severity ordering")
	}
}

func TestParseStatusCode(t *testing.T) {
	tests := []struct {
		in      string
		want    StatusCode
		wantErr bool
	}{
		{"FAIL", StatusFail, false},
		{"warn", StatusWarn, false},
		{" Error ", StatusError, false},
		{"skip", StatusSkip, false},
		{"nope", StatusSkip, true},
	}
	for _, tt := range tests {
		got, err := ParseStatusCode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseStatusCode(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseStatusCode(%q)=%s want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusCode_JSON(t *testing.T) {
	b, err := json.Marshal(Fail("bad-foo", "foo is bad"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"severity":"FAIL"`) {
		t.Fatalf("expected textual severity, got %s", b)
	}
	var o Override
	if err := json.Unmarshal([]byte(`{"code":"x","status":"WARN","reason":"r"}`), &o); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if o.Status != StatusWarn {
		t.Fatalf("override status = %s", o.Status)
	}
}

func TestWorstStatus(t *testing.T) {
	if got := (StatusList{}).WorstStatus(); got != StatusPass {
		t.Fatalf("empty list worst = %s, want PASS", got)
	}
	if got := (StatusList{SkipStatus("a", "b")}).WorstStatus(); got != StatusSkip {
		t.Fatalf("skip-only worst = %s, want SKIP", got)
	}
	list := StatusList{Info("i", ""), Pass()}
	for _, s := range AllStatusCodes() {
		l := append(append(StatusList(nil), list...), Status{Severity: s})
		if l.WorstStatus() < s {
			t.Errorf("adding %s gave worst %s", s, l.WorstStatus())
		}
	}
}

func TestApplyOverride(t *testing.T) {
	overrides := []Override{{Code: "bad-foo", Status: StatusWarn, Reason: "tolerated"}}

	s := Fail("bad-foo", "foo is bad")
	s.ApplyOverride(overrides)
	if s.Severity != StatusWarn {
		t.Fatalf("severity = %s, want WARN", s.Severity)
	}
	if s.Message != "foo is bad (Overriden: tolerated)" {
		t.Fatalf("message = %q", s.Message)
	}

	noMsg := Status{Severity: StatusFail, Code: "bad-foo"}
	noMsg.ApplyOverride(overrides)
	if noMsg.Message != "No original message (Overriden: tolerated)" {
		t.Fatalf("message = %q", noMsg.Message)
	}

	other := Fail("other", "unrelated")
	other.ApplyOverride(overrides)
	if other.Severity != StatusFail || other.Message != "unrelated" {
		t.Fatalf("non-matching override changed status: %+v", other)
	}
}

func TestApplyOverrides_Idempotent(t *testing.T) {
	overrides := []Override{
		{Code: "a", Status: StatusInfo, Reason: "fine"},
		{Code: "b", Status: StatusFatal, Reason: "not fine"},
	}
	once := StatusList{Fail("a", "x"), Warn("b", ""), Pass(), Fail("c", "y")}
	once.ApplyOverrides(overrides)

	twice := StatusList{Fail("a", "x"), Warn("b", ""), Pass(), Fail("c", "y")}
	twice.ApplyOverrides(overrides)
	twice.ApplyOverrides(overrides)

	for i := range once {
		if once[i].Severity != twice[i].Severity || once[i].Message != twice[i].Message {
			t.Errorf("status %d: once=%+v twice=%+v", i, once[i], twice[i])
		}
	}
}

func TestMetadata_JSONTagged(t *testing.T) {
	s := Fail("missing", "m").WithMetadata(
		TableProblem{TableTag: "OS/2", FieldName: "fsType", Actual: 4, Expected: 0, Message: "bad"},
		GlyphProblem{GlyphName: "A", GlyphID: 36, Message: "odd"},
		OtherMetadata{Value: map[string]any{"k": "v"}},
	)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"type":"TableProblem"`, `"type":"GlyphProblem"`, `"type":"Other"`, `"table_tag":"OS/2"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("missing %s in %s", want, b)
		}
	}
}
