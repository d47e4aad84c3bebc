package universal

import (
	"fmt"

	"fontspector/internal/checkapi"
)

const fileSizeID = "universal/file_size"

var FileSize = checkapi.Check{
	ID:    fileSizeID,
	Title: "Ensure files are not too large.",
	Rationale: `Serving extremely large font files causes usability issues.
This check ensures that file sizes are reasonable.`,
	Proposal:       []string{"https://github.com/fonttools/fontbakery/issues/3320"},
	AppliesTo:      checkapi.FileTypeTTF.Tag,
	Implementation: checkapi.CheckOne(fileSize),
}

func fileSize(t *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
	if _, err := checkapi.RequireFont(t); err != nil {
		return nil, err
	}
	size := len(t.Contents())
	failSize, hasFail := cx.ConfigNumber(fileSizeID, "FAIL_SIZE")
	warnSize, hasWarn := cx.ConfigNumber(fileSizeID, "WARN_SIZE")
	if !hasFail && !hasWarn {
		return nil, checkapi.Skip("no-size-limits", "No size limits configured")
	}
	if hasFail && float64(size) > failSize {
		return checkapi.JustOneFail("massive-font", fmt.Sprintf(
			"Font file is %s, larger than limit %s", humanSize(float64(size)), humanSize(failSize)))
	}
	if hasWarn && float64(size) > warnSize {
		return checkapi.JustOneWarn("large-font", fmt.Sprintf(
			"Font file is %s; ideally it should be less than %s", humanSize(float64(size)), humanSize(warnSize)))
	}
	return checkapi.JustOnePass()
}

// humanSize formats a byte count with decimal units: 1.05 MB.
func humanSize(n float64) string {
	units := []string{"B", "kB", "MB", "GB"}
	i := 0
	for n >= 1000 && i < len(units)-1 {
		n /= 1000
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", int(n))
	}
	return fmt.Sprintf("%.2f %s", n, units[i])
}
