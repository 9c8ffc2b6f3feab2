package ledger

import (
	"testing"
	"time"

	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestPlan(t *testing.T, weights ...string) []Installment {
	t.Helper()
	tenantID := uuid.New()
	invoiceID := uuid.New()
	plan := make([]Installment, len(weights))
	for i, w := range weights {
		inst, err := NewInstallment(
			tenantID,
			invoiceID,
			i+1,
			valueobject.MustNewWeightFromString(w),
			time.Now().AddDate(0, 0, 30*(i+1)),
		)
		require.NoError(t, err)
		plan[i] = *inst
	}
	return plan
}

func TestSummarize(t *testing.T) {
	t.Run("fresh plan has everything pending", func(t *testing.T) {
		plan := buildTestPlan(t, "12.500", "12.500", "12.500", "12.500")

		summary := Summarize(plan)

		assert.True(t, summary.TotalWeight.Equal(decimal.RequireFromString("50")))
		assert.True(t, summary.TotalPaid.IsZero())
		assert.True(t, summary.RemainingWeight.Equal(decimal.RequireFromString("50")))
		assert.Equal(t, 4, summary.TotalCount)
		assert.Equal(t, 4, summary.PendingCount)
		assert.Equal(t, 0, summary.PaidCount)
		assert.False(t, summary.IsFullyPaid)
	})

	t.Run("partial payment reduces remaining without flipping counts", func(t *testing.T) {
		plan := buildTestPlan(t, "12.500", "12.500")

		_, err := plan[0].ApplyPayment(
			mustMoney(t, "5000000"),
			decimal.RequireFromString("2000000"),
			time.Now(),
			"cash", "", "",
		)
		require.NoError(t, err)

		summary := Summarize(plan)

		assert.True(t, summary.TotalPaid.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, summary.RemainingWeight.Equal(decimal.RequireFromString("22.5")))
		assert.Equal(t, 2, summary.PendingCount)
		assert.Equal(t, 0, summary.PaidCount)
		assert.False(t, summary.IsFullyPaid)
	})

	t.Run("fully settled plan within tolerance", func(t *testing.T) {
		plan := buildTestPlan(t, "2.500", "2.500")

		for i := range plan {
			_, err := plan[i].ApplyPayment(
				mustMoney(t, "5000000"),
				decimal.RequireFromString("2000000"),
				time.Now(),
				"cash", "", "",
			)
			require.NoError(t, err)
		}

		summary := Summarize(plan)

		assert.True(t, summary.RemainingWeight.IsZero())
		assert.Equal(t, 0, summary.PendingCount)
		assert.Equal(t, 2, summary.PaidCount)
		assert.Equal(t, summary.TotalCount, summary.PaidCount+summary.PendingCount)
		assert.True(t, summary.IsFullyPaid)
	})

	t.Run("empty plan is not fully paid", func(t *testing.T) {
		summary := Summarize(nil)

		assert.Equal(t, 0, summary.TotalCount)
		assert.True(t, summary.RemainingWeight.IsZero())
		assert.False(t, summary.IsFullyPaid)
	})
}
