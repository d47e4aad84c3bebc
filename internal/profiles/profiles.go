// Package profiles registers the built-in profiles and loads declarative
// profile documents.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fontspector/internal/checkapi"
	"fontspector/internal/profiles/bridge"
	"fontspector/internal/profiles/googlefonts"
	"fontspector/internal/profiles/opentype"
	"fontspector/internal/profiles/universal"
)

// Options configures the built-in plugins.
type Options struct {
	GoogleFonts googlefonts.Options
}

// Core returns the built-in plugins in dependency order.
func Core(opts Options) []checkapi.Plugin {
	return []checkapi.Plugin{
		opentype.Plugin,
		universal.Plugin,
		googlefonts.New(opts.GoogleFonts),
	}
}

// RegisterCore installs every built-in profile into reg.
func RegisterCore(reg *checkapi.Registry, opts Options) error {
	return reg.RegisterPlugins(Core(opts)...)
}

// IsProfileFile reports whether a --profile argument names a document
// rather than a registered profile.
func IsProfileFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".toml")
}

// RegisterProfileFile reads a TOML profile document, registers its external
// checks and installs the profile under the file's stem, which is returned.
func RegisterProfileFile(reg *checkapi.Registry, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", checkapi.FileNotFoundError(path)
		}
		return "", checkapi.NewError(checkapi.KindGeneral, path, err)
	}
	doc, err := checkapi.ParseProfileDocument(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	ids := make([]string, 0, len(doc.ExternalChecks))
	for id := range doc.ExternalChecks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		c, err := bridge.NewCheck(id, doc.ExternalChecks[id])
		if err != nil {
			return "", fmt.Errorf("profile %s: %w", path, err)
		}
		if err := reg.RegisterCheck(c); err != nil {
			return "", fmt.Errorf("profile %s: %w", path, err)
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := doc.Builder().BuildDeferred(name, reg); err != nil {
		return "", err
	}
	return name, nil
}
