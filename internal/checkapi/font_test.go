package checkapi

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadTestFont(t *testing.T) {
	tb := NewTestableWithContents("GoRegular.ttf", goregular.TTF)
	f, err := LoadTestFont(tb)
	if err != nil {
		t.Fatalf("LoadTestFont: %v", err)
	}
	fam, err := f.FamilyName()
	if err != nil || fam != "Go" {
		t.Fatalf("FamilyName = %q, %v", fam, err)
	}
	if f.UnitsPerEm() != 2048 {
		t.Errorf("UnitsPerEm = %d", f.UnitsPerEm())
	}
	if _, ok := f.GlyphFor('A'); !ok {
		t.Error("A should be mapped")
	}
	if f.IsVariable() {
		t.Error("Go Regular is static")
	}

	again, _ := LoadTestFont(tb)
	if again != f {
		t.Error("expected the parsed view to be reused")
	}
	tb.Set(goregular.TTF)
	if reparsed, _ := LoadTestFont(tb); reparsed == f {
		t.Error("Set must invalidate the parsed view")
	}

	other, _ := LoadTestFont(NewTestableWithContents("GoRegular.ttf", goregular.TTF))
	if other == f {
		t.Error("parsed views must belong to their own testable")
	}
}

func TestRequireFont(t *testing.T) {
	_, err := RequireFont(NewTestableWithContents("METADATA.pb", nil))
	var skip *SkipError
	if !errors.As(err, &skip) || skip.Code != "unfulfilled-conditions" {
		t.Fatalf("expected skip, got %v", err)
	}
	_, err = RequireFont(NewTestableWithContents("broken.ttf", []byte("nope")))
	if !errors.Is(err, &Error{Kind: KindParsing}) {
		t.Fatalf("expected parsing error, got %v", err)
	}
}
