package payments

import (
	"fmt"
	"sort"

	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
)

// SplitResult reports what a re-split did. UnallocatedPaise is nonzero only
// when every member is pinned and the pins do not reconstitute the total;
// the caller surfaces it, the engine never absorbs it.
type SplitResult struct {
	UnpinnedCount    int
	PinnedPaise      int64
	UnallocatedPaise int64
}

// Resplit assigns CalculatedPaise to every un-pinned member so that the sum
// of effective amounts reconstitutes totalPaise exactly. Members are walked
// in insertion order; each un-pinned member but the last takes an even share
// of what is left rounded up to the whole rupee, and the last one absorbs
// the remainder, so shares stay rupee-round where possible and none can go
// negative.
//
// Pinned members (a zero pin included) keep their amounts and are subtracted
// from the pool up front. The members slice is mutated in place.
func Resplit(totalPaise int64, members []*models.SquadMember) (SplitResult, error) {
	if totalPaise <= 0 {
		return SplitResult{}, apperrors.New(apperrors.CodeValidation, "total amount must be positive")
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Position < members[j].Position
	})

	var pinned int64
	unpinned := make([]*models.SquadMember, 0, len(members))
	for _, m := range members {
		if m.Pinned() {
			pinned += *m.AdjustedPaise
			continue
		}
		unpinned = append(unpinned, m)
	}

	remainder := totalPaise - pinned
	result := SplitResult{UnpinnedCount: len(unpinned), PinnedPaise: pinned}

	if len(unpinned) == 0 {
		result.UnallocatedPaise = remainder
		return result, nil
	}

	if remainder < 0 {
		return SplitResult{}, apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("pinned amounts exceed total by %d paise", -remainder))
	}

	left := remainder
	for i, m := range unpinned {
		membersLeft := int64(len(unpinned) - i)
		if membersLeft == 1 {
			m.CalculatedPaise = left
			left = 0
			break
		}
		// ceil to the whole rupee, capped so tiny pools cannot oversubscribe
		share := ((left + membersLeft*100 - 1) / (membersLeft * 100)) * 100
		if share > left {
			share = left
		}
		m.CalculatedPaise = share
		left -= share
	}

	return result, nil
}
