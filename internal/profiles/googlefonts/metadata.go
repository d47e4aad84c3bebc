package googlefonts

import (
	"fmt"
	"slices"

	"fontspector/internal/checkapi"
	"fontspector/internal/metadatapb"
)

// familyMetadata parses METADATA.pb once per testable.
func familyMetadata(t *checkapi.Testable, cx *checkapi.Context) (*metadatapb.Family, error) {
	return checkapi.CachedJSON(cx, "metadata_pb", func() (*metadatapb.Family, error) {
		fam, err := metadatapb.Parse(t.Contents())
		if err != nil {
			return nil, checkapi.ParsingError(t.Filename, err)
		}
		return fam, nil
	})
}

var MetadataParses = checkapi.Check{
	ID:    "googlefonts/metadata/parses",
	Title: "Check METADATA.pb parses correctly.",
	Rationale: `The purpose of this check is to ensure that the METADATA.pb file is not
malformed.`,
	Proposal:  []string{"https://github.com/fonttools/fontbakery/issues/2248"},
	AppliesTo: checkapi.FileTypeMDPB.Tag,
	Implementation: checkapi.CheckOne(func(t *checkapi.Testable, cx *checkapi.Context) (checkapi.StatusList, error) {
		fam, err := familyMetadata(t, cx)
		if err != nil {
			return checkapi.JustOneFatal("parsing-error", fmt.Sprintf("Failed to parse METADATA.pb: %v", err))
		}
		if fam.Name == "" {
			return checkapi.JustOneFail("missing-name", "METADATA.pb does not declare a family name.")
		}
		return checkapi.JustOnePass()
	}),
}

var MetadataFilenames = checkapi.Check{
	ID:    "googlefonts/family/metadata_filenames",
	Title: "METADATA.pb and the font files agree on filenames.",
	Rationale: `Every font listed in METADATA.pb must be shipped alongside it, and every
binary in the family directory must be declared in METADATA.pb. Otherwise the
font will either fail to be served or be served without its metadata.`,
	AppliesTo: checkapi.FileTypeMDPB.Tag,
	Implementation: checkapi.CheckAll(func(coll *checkapi.TestableCollection, cx *checkapi.Context) (checkapi.StatusList, error) {
		mdpb := coll.GetFile(checkapi.FileTypeMDPB.Patterns[0])
		if mdpb == nil {
			return checkapi.JustOneSkip("no-metadata", "No METADATA.pb in this family")
		}
		fam, err := familyMetadata(mdpb, cx)
		if err != nil {
			return nil, checkapi.Skip("unparseable-metadata", "METADATA.pb could not be parsed")
		}

		var declared []string
		var problems checkapi.StatusList
		for _, f := range fam.Fonts {
			declared = append(declared, f.Filename)
			if coll.GetFile(f.Filename) == nil {
				problems = append(problems, checkapi.Fail("file-not-found",
					fmt.Sprintf("METADATA.pb lists %s but it is not in the family directory.", f.Filename)))
			}
		}
		var undeclared []string
		for _, t := range coll.Testables {
			if checkapi.FileTypeTTF.Applies(t) && !slices.Contains(declared, t.Basename()) {
				undeclared = append(undeclared, t.Basename())
			}
		}
		if len(undeclared) > 0 {
			problems = append(problems, checkapi.Fail("file-not-declared",
				"These font files are not listed in METADATA.pb:\n\n"+checkapi.BulletList(cx, undeclared)))
		}
		return problems, nil
	}),
}
