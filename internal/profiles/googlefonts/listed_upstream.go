package googlefonts

import (
	"context"
	"errors"
	"fmt"

	"fontspector/internal/checkapi"
	"fontspector/internal/upstream"
)

// ListedUpstream builds the check asking whether the family is already in
// google/fonts. New families are reported as Info so reviewers know the
// family directory will be created.
func ListedUpstream(lookup upstream.Lookup) checkapi.Check {
	return checkapi.Check{
		ID:    "googlefonts/metadata/listed_upstream",
		Title: "Is the family already listed in google/fonts?",
		Rationale: `Families that are not yet in the google/fonts repository go through the
new-family onboarding process, which has additional requirements.`,
		AppliesTo: checkapi.FileTypeMDPB.Tag,
		Implementation: checkapi.CheckOne(func(t *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
			return listedUpstream(lookup, t, cx)
		}),
	}
}

func listedUpstream(lookup upstream.Lookup, t *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
	if lookup == nil {
		return nil, checkapi.Skip("no-upstream", "Upstream lookups are not configured")
	}
	fam, err := familyMetadata(t, cx)
	if err != nil {
		return nil, checkapi.Skip("unparseable-metadata", "METADATA.pb could not be parsed")
	}
	ctx, cancel, err := cx.NetworkContext(context.Background())
	if err != nil {
		if errors.Is(err, checkapi.ErrNetworkSkipped) {
			return nil, checkapi.Skip("network-disabled", "Network access disabled")
		}
		return nil, err
	}
	defer cancel()

	listed, err := checkapi.CachedJSON(cx, "is_listed_on_google_fonts:"+fam.Name, func() (bool, error) {
		return lookup.IsListed(ctx, fam.Name)
	})
	if err != nil {
		return nil, checkapi.NetworkError(fmt.Errorf("looking up %s on Google Fonts: %s", fam.Name, upstream.Describe(err)))
	}
	if !listed {
		return checkapi.JustOneInfo("new-family",
			fmt.Sprintf("%s is not yet listed on Google Fonts; this will be onboarded as a new family.", fam.Name))
	}
	return checkapi.JustOnePass()
}
