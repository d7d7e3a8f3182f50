package services

import (
	"fmt"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

// ComputeChain resolves the ordered list of operations that must run to
// satisfy the target: prerequisites that have not yet succeeded this
// session, in table order, then the target itself. The explicitly requested
// target is always re-run even when it already succeeded; only its
// prerequisites are skipped. The result is de-duplicated preserving
// first-seen order.
func ComputeChain(target models.OperationKind, statuses map[models.OperationKind]models.OperationStatus) ([]models.OperationKind, error) {
	prereqs, ok := models.Prerequisites[target]
	if !ok {
		return nil, fmt.Errorf("unknown operation kind %q", target)
	}

	chain := make([]models.OperationKind, 0, len(prereqs)+1)
	seen := make(map[models.OperationKind]bool, len(prereqs)+1)

	for _, prereq := range prereqs {
		if statuses[prereq] == models.StatusSucceeded {
			continue
		}
		if seen[prereq] {
			continue
		}
		seen[prereq] = true
		chain = append(chain, prereq)
	}

	if !seen[target] {
		chain = append(chain, target)
	}

	return chain, nil
}
