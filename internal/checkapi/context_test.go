package checkapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpecialize_ConfigurationLayering(t *testing.T) {
	base := NewContext()
	base.Overrides = []Override{{Code: "user", Status: StatusInfo, Reason: "u"}}
	check := &Check{ID: "universal/file_size", Metadata: map[string]any{"kind": "size"}}

	user := map[string]any{
		"universal/file_size": map[string]any{"WARN_SIZE": int64(100)},
		"other":               map[string]any{"X": 1},
	}
	defaults := map[string]any{"WARN_SIZE": 5, "FAIL_SIZE": 10}
	profileOverrides := []Override{{Code: "profile", Status: StatusWarn, Reason: "p"}}
	cache := NewCache()

	cx := base.Specialize(check, user, defaults, profileOverrides, cache)

	local := cx.LocalConfig("universal/file_size")
	if local["WARN_SIZE"] != int64(100) {
		t.Errorf("user value must win, got %v", local["WARN_SIZE"])
	}
	if local["FAIL_SIZE"] != 10 {
		t.Errorf("missing key must come from defaults, got %v", local["FAIL_SIZE"])
	}
	if len(cx.Overrides) != 2 || cx.Overrides[0].Code != "user" || cx.Overrides[1].Code != "profile" {
		t.Errorf("overrides = %+v", cx.Overrides)
	}
	if cx.CheckMetadata == nil || cx.Cache != cache {
		t.Error("metadata and cache must be attached")
	}
	if len(base.Overrides) != 1 || len(base.Configuration) != 0 {
		t.Error("base context must not be mutated")
	}

	if n, ok := cx.ConfigNumber("universal/file_size", "FAIL_SIZE"); !ok || n != 10 {
		t.Errorf("ConfigNumber = %v, %v", n, ok)
	}
	if _, ok := cx.ConfigNumber("universal/file_size", "NOPE"); ok {
		t.Error("missing key must report !ok")
	}
}

func TestNetworkContext(t *testing.T) {
	cx := NewContext()
	cx.SkipNetwork = true
	if _, _, err := cx.NetworkContext(context.Background()); !errors.Is(err, ErrNetworkSkipped) {
		t.Fatalf("err = %v", err)
	}

	cx.SkipNetwork = false
	cx.NetworkTimeout = 50 * time.Millisecond
	ctx, cancel, err := cx.NetworkContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Second {
		t.Fatalf("deadline = %v, %v", deadline, ok)
	}
}

func TestErrorIsKind(t *testing.T) {
	err := NetworkError(errors.New("dial tcp"))
	if !errors.Is(err, &Error{Kind: KindNetwork}) {
		t.Fatal("expected network kind match")
	}
	if errors.Is(err, &Error{Kind: KindParsing}) {
		t.Fatal("unexpected parsing kind match")
	}
}
