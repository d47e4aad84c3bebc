package profiles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fontspector/internal/checkapi"
	"fontspector/internal/profiles/bridge"
)

const vendorProfile = `include_profiles = ["universal"]

[sections]
"Vendor Checks" = ["vendor/names", "opentype/unitsperem", "vendor/not_yet_written"]

[overrides]
"vendor/names" = [{ code = "bad-name", status = "WARN", reason = "tolerated for now" }]

[external_checks."vendor/names"]
title = "Names follow house style"
command = ["house-style", "--strict"]

["universal/file_size"]
WARN_SIZE = 2000000
`

func TestRegisterCore(t *testing.T) {
	reg := checkapi.NewRegistry()
	require.NoError(t, RegisterCore(reg, Options{}))
	assert.Equal(t, []string{"googlefonts", "opentype", "universal"}, reg.ProfileNames())
	assert.Error(t, RegisterCore(reg, Options{}), "duplicate registration must fail")
}

func TestIsProfileFile(t *testing.T) {
	assert.True(t, IsProfileFile("vendor.toml"))
	assert.True(t, IsProfileFile("dir/Vendor.TOML"))
	assert.False(t, IsProfileFile("universal"))
}

func TestRegisterProfileFile(t *testing.T) {
	reg := checkapi.NewRegistry()
	require.NoError(t, RegisterCore(reg, Options{}))

	path := filepath.Join(t.TempDir(), "vendor.toml")
	require.NoError(t, os.WriteFile(path, []byte(vendorProfile), 0o644))

	name, err := RegisterProfileFile(reg, path)
	require.NoError(t, err)
	assert.Equal(t, "vendor", name)

	p, ok := reg.Profile("vendor")
	require.True(t, ok)
	last := p.Sections[len(p.Sections)-1]
	assert.Equal(t, "Vendor Checks", last.Name)
	assert.Equal(t, []string{"vendor/names", "opentype/unitsperem", "vendor/not_yet_written"}, last.CheckIDs)
	assert.Equal(t, int64(2000000), p.Defaults["universal/file_size"]["WARN_SIZE"])
	require.Len(t, p.Overrides["vendor/names"], 1)

	c, ok := reg.Check("vendor/names")
	require.True(t, ok)
	assert.Equal(t, "Names follow house style", c.Title)
	assert.Equal(t, map[string]any{bridge.MetadataCommand: []string{"house-style", "--strict"}}, c.Metadata)

	// Unknown IDs are tolerated until the plan is built.
	_, ok = reg.Check("vendor/not_yet_written")
	assert.False(t, ok)
}

func TestRegisterProfileFile_Errors(t *testing.T) {
	reg := checkapi.NewRegistry()

	_, err := RegisterProfileFile(reg, filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, &checkapi.Error{Kind: checkapi.KindFileNotFound}), "got %v", err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("no sections here = 1"), 0o644))
	_, err = RegisterProfileFile(reg, bad)
	assert.True(t, errors.Is(err, &checkapi.Error{Kind: checkapi.KindParsing}), "got %v", err)

	missingInclude := filepath.Join(t.TempDir(), "orphan.toml")
	require.NoError(t, os.WriteFile(missingInclude, []byte("include_profiles = [\"nope\"]\n[sections]\n\"A\" = []\n"), 0o644))
	_, err = RegisterProfileFile(reg, missingInclude)
	assert.ErrorContains(t, err, "included profile nope not found")
}
