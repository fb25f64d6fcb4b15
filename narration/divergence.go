package narration

import (
	"fmt"

	"github.com/andrewarrow/scenecast/errs"
)

// CheckDivergence implements the §4.4 divergence check: if the recorded
// narration count differs from the preprocessed count, the pipeline must
// fail NarrationMismatch and not render. This is what disallows conditional
// narration branches.
func CheckDivergence(preprocessedCount, recordedCount int) error {
	if preprocessedCount != recordedCount {
		return errs.New(errs.NarrationMismatch, fmt.Sprintf(
			"narration count diverged: preprocessed %d, recorded %d", preprocessedCount, recordedCount))
	}
	return nil
}
