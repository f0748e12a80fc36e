package trip

import (
	apperrors "github.com/yanqian/trip-planner/pkg/errors"
)

// Aggregate hands the priced records to the caller unchanged in content and order,
// after checking that every record satisfies its variant's shape.
func Aggregate(items []PricedCandidate) ([]PricedCandidate, error) {
	out := make([]PricedCandidate, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvariantViolation, "priced candidate failed validation", err)
		}
		out[i] = item
	}
	return out, nil
}
