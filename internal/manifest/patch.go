package manifest

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// ManifestPath is the logical path of the manifest document inside the policy
// repository; diff entries for this path must always carry content.
const ManifestPath = "policy/manifest.json"

// PatchFunc turns two canonical manifest renderings into patch text. The
// planner treats patch generation as a pluggable capability.
type PatchFunc func(before, after, fromLabel, toLabel string) (string, error)

// UnifiedPatch is the default PatchFunc: a three-line-context unified diff.
// Identical inputs produce an empty patch.
func UnifiedPatch(before, after, fromLabel, toLabel string) (string, error) {
	patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("compute unified diff: %w", err)
	}
	return patch, nil
}
