package payments

import (
	"testing"

	"github.com/abhinavece/matchpay-backend/pkg/db/models"
	apperrors "github.com/abhinavece/matchpay-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpinnedMembers(n int) []*models.SquadMember {
	members := make([]*models.SquadMember, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, &models.SquadMember{Position: i})
	}
	return members
}

func pin(m *models.SquadMember, paise int64) *models.SquadMember {
	m.AdjustedPaise = &paise
	return m
}

func effectiveSum(members []*models.SquadMember) int64 {
	var sum int64
	for _, m := range members {
		sum += m.EffectivePaise()
	}
	return sum
}

func TestResplitEvenRemainder(t *testing.T) {
	members := unpinnedMembers(3)

	result, err := Resplit(100000, members)
	require.NoError(t, err)
	assert.Equal(t, 3, result.UnpinnedCount)

	// 1000 rupees over three members: first takes the rounded-up share
	assert.Equal(t, int64(33400), members[0].CalculatedPaise)
	assert.Equal(t, int64(33300), members[1].CalculatedPaise)
	assert.Equal(t, int64(33300), members[2].CalculatedPaise)
	assert.Equal(t, int64(100000), effectiveSum(members))
}

func TestResplitWithPinnedMember(t *testing.T) {
	members := unpinnedMembers(3)
	pin(members[0], 20000)

	result, err := Resplit(100000, members)
	require.NoError(t, err)
	assert.Equal(t, 2, result.UnpinnedCount)
	assert.Equal(t, int64(20000), result.PinnedPaise)

	assert.Equal(t, int64(40000), members[1].CalculatedPaise)
	assert.Equal(t, int64(40000), members[2].CalculatedPaise)
	assert.Equal(t, int64(100000), effectiveSum(members))
}

func TestResplitZeroPinIsFreePlayer(t *testing.T) {
	members := unpinnedMembers(3)
	pin(members[1], 0)

	_, err := Resplit(100000, members)
	require.NoError(t, err)

	assert.Equal(t, int64(0), members[1].EffectivePaise())
	assert.Equal(t, int64(50000), members[0].CalculatedPaise)
	assert.Equal(t, int64(50000), members[2].CalculatedPaise)
	assert.Equal(t, int64(100000), effectiveSum(members))
}

func TestResplitTinyRemainderNeverGoesNegative(t *testing.T) {
	members := unpinnedMembers(3)
	pin(members[0], 99999)

	// one paisa left for two members
	_, err := Resplit(100000, members)
	require.NoError(t, err)
	assert.Equal(t, int64(1), members[1].CalculatedPaise)
	assert.Equal(t, int64(0), members[2].CalculatedPaise)
	assert.Equal(t, int64(100000), effectiveSum(members))
}

func TestResplitSubRupeeRemainderLandsOnLastMember(t *testing.T) {
	members := unpinnedMembers(3)

	_, err := Resplit(100001, members)
	require.NoError(t, err)

	// everyone but the last owes whole rupees
	assert.Equal(t, int64(33400), members[0].CalculatedPaise)
	assert.Equal(t, int64(33400), members[1].CalculatedPaise)
	assert.Equal(t, int64(33201), members[2].CalculatedPaise)
	assert.Equal(t, int64(100001), effectiveSum(members))
}

func TestResplitRejectsNonPositiveTotal(t *testing.T) {
	for _, total := range []int64{0, -100} {
		_, err := Resplit(total, unpinnedMembers(2))
		require.Error(t, err)
		typed := apperrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, apperrors.CodeValidation, typed.Code())
	}
}

func TestResplitRejectsPinsExceedingTotal(t *testing.T) {
	members := unpinnedMembers(3)
	pin(members[0], 120000)

	_, err := Resplit(100000, members)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())

	// rejection must not touch the remaining shares
	assert.Equal(t, int64(0), members[1].CalculatedPaise)
	assert.Equal(t, int64(0), members[2].CalculatedPaise)
}

func TestResplitAllPinnedSurfacesDiscrepancy(t *testing.T) {
	members := unpinnedMembers(2)
	pin(members[0], 30000)
	pin(members[1], 30000)

	result, err := Resplit(100000, members)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UnpinnedCount)
	assert.Equal(t, int64(40000), result.UnallocatedPaise)
}

func TestResplitAllPinnedOverTotalSurfacesNegativeDiscrepancy(t *testing.T) {
	members := unpinnedMembers(2)
	pin(members[0], 70000)
	pin(members[1], 70000)

	result, err := Resplit(100000, members)
	require.NoError(t, err)
	assert.Equal(t, int64(-40000), result.UnallocatedPaise)
}

func TestResplitConservationAcrossSizes(t *testing.T) {
	totals := []int64{1, 99, 100000, 99999, 1000001}
	for _, total := range totals {
		for n := 1; n <= 11; n++ {
			members := unpinnedMembers(n)
			_, err := Resplit(total, members)
			require.NoError(t, err)
			assert.Equal(t, total, effectiveSum(members), "total=%d n=%d", total, n)

			prev := members[0].CalculatedPaise
			for _, m := range members[1:] {
				assert.LessOrEqual(t, m.CalculatedPaise, prev)
				assert.GreaterOrEqual(t, m.CalculatedPaise, int64(0))
				prev = m.CalculatedPaise
			}
		}
	}
}
