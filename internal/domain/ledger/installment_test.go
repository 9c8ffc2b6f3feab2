package ledger

import (
	"testing"
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestInstallment(t *testing.T, weightDue string) *Installment {
	t.Helper()
	inst, err := NewInstallment(
		uuid.New(),
		uuid.New(),
		1,
		valueobject.MustNewWeightFromString(weightDue),
		time.Now().AddDate(0, 0, 30),
	)
	require.NoError(t, err)
	return inst
}

func mustMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyIRRFromString(amount)
	require.NoError(t, err)
	return m
}

func TestInstallmentStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  InstallmentStatus
		isValid bool
	}{
		{InstallmentStatusPending, true},
		{InstallmentStatusPaid, true},
		{InstallmentStatus("OVERDUE"), false},
		{InstallmentStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestNewInstallment(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	dueDate := time.Now().AddDate(0, 0, 30)
	weight := valueobject.MustNewWeightFromString("12.500")

	t.Run("creates valid installment", func(t *testing.T) {
		inst, err := NewInstallment(tenantID, invoiceID, 1, weight, dueDate)
		require.NoError(t, err)

		assert.Equal(t, tenantID, inst.TenantID)
		assert.Equal(t, invoiceID, inst.InvoiceID)
		assert.Equal(t, 1, inst.Sequence)
		assert.Equal(t, InstallmentTypeGold, inst.Type)
		assert.True(t, inst.WeightDue.Equal(decimal.RequireFromString("12.500")))
		assert.True(t, inst.WeightPaid.IsZero())
		assert.True(t, inst.AmountPaid.IsZero())
		assert.Nil(t, inst.PriceAtLastPayment)
		assert.Equal(t, InstallmentStatusPending, inst.Status)
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewInstallment(uuid.Nil, invoiceID, 1, weight, dueDate)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects empty invoice", func(t *testing.T) {
		_, err := NewInstallment(tenantID, uuid.Nil, 1, weight, dueDate)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects zero sequence", func(t *testing.T) {
		_, err := NewInstallment(tenantID, invoiceID, 0, weight, dueDate)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects zero weight", func(t *testing.T) {
		_, err := NewInstallment(tenantID, invoiceID, 1, valueobject.ZeroWeight(), dueDate)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects zero due date", func(t *testing.T) {
		_, err := NewInstallment(tenantID, invoiceID, 1, weight, time.Time{})
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestInstallment_ApplyPayment(t *testing.T) {
	price := decimal.RequireFromString("2000000")

	t.Run("partial payment settles weight at payment-date price", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")

		settled, err := inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "RCPT-1", "")
		require.NoError(t, err)

		assert.Equal(t, "2.500", settled.String())
		assert.True(t, inst.WeightPaid.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, inst.AmountPaid.Equal(decimal.RequireFromString("5000000")))
		require.NotNil(t, inst.PriceAtLastPayment)
		assert.True(t, inst.PriceAtLastPayment.Equal(price))
		assert.Equal(t, InstallmentStatusPending, inst.Status)
		assert.True(t, inst.IsPartial())
		assert.Equal(t, "10.000", inst.RemainingWeight().String())
	})

	t.Run("same weight settles at a different price", func(t *testing.T) {
		// 5,500,000 at 2,200,000/gram buys the same 2.500 g that
		// 5,000,000 bought at 2,000,000/gram.
		inst := createTestInstallment(t, "12.500")

		settled, err := inst.ApplyPayment(mustMoney(t, "5500000"), decimal.RequireFromString("2200000"), time.Now(), "TRANSFER", "", "")
		require.NoError(t, err)

		assert.Equal(t, "2.500", settled.String())
	})

	t.Run("full payment marks installment paid", func(t *testing.T) {
		inst := createTestInstallment(t, "2.500")

		settled, err := inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "", "")
		require.NoError(t, err)

		assert.Equal(t, "2.500", settled.String())
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		assert.True(t, inst.IsFullyPaid())
		assert.False(t, inst.IsPartial())
		require.NotNil(t, inst.PaidAt)
	})

	t.Run("remaining within tolerance counts as paid", func(t *testing.T) {
		inst := createTestInstallment(t, "2.500")

		// 4,998,000 settles 2.499 g, leaving 0.001 g, inside the tolerance.
		_, err := inst.ApplyPayment(mustMoney(t, "4998000"), price, time.Now(), "CASH", "", "")
		require.NoError(t, err)

		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		assert.True(t, inst.IsFullyPaid())
		assert.True(t, inst.WeightPaid.LessThanOrEqual(inst.WeightDue))
	})

	t.Run("excess within tolerance is absorbed", func(t *testing.T) {
		inst := createTestInstallment(t, "2.500")

		// 5,001,000 settles 2.5005 g, 0.0005 g above due but inside tolerance.
		settled, err := inst.ApplyPayment(mustMoney(t, "5001000"), price, time.Now(), "CASH", "", "")
		require.NoError(t, err)

		assert.Equal(t, "2.500", settled.String())
		assert.True(t, inst.WeightPaid.Equal(inst.WeightDue))
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
	})

	t.Run("rejects overpayment beyond tolerance", func(t *testing.T) {
		inst := createTestInstallment(t, "2.500")

		_, err := inst.ApplyPayment(mustMoney(t, "6000000"), price, time.Now(), "CASH", "", "")
		assert.True(t, shared.IsBusinessError(err))
		assert.True(t, inst.WeightPaid.IsZero(), "failed settlement must not mutate state")
		assert.True(t, inst.AmountPaid.IsZero())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")

		_, err := inst.ApplyPayment(valueobject.ZeroIRR(), price, time.Now(), "CASH", "", "")
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")

		_, err := inst.ApplyPayment(mustMoney(t, "5000000"), decimal.Zero, time.Now(), "CASH", "", "")
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects payment against currency installment", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")
		inst.Type = InstallmentTypeCurrency

		_, err := inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "", "")
		require.Error(t, err)
	})

	t.Run("weight paid is monotonically non-decreasing", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")

		previous := inst.WeightPaid
		for range 4 {
			_, err := inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "", "")
			require.NoError(t, err)
			assert.True(t, inst.WeightPaid.GreaterThanOrEqual(previous))
			previous = inst.WeightPaid
		}
		// 4 * 2.5 g paid, 2.5 g remaining
		assert.Equal(t, "2.500", inst.RemainingWeight().String())
	})

	t.Run("repeated settlements converge and raise version", func(t *testing.T) {
		inst := createTestInstallment(t, "5.000")
		startVersion := inst.Version

		_, err := inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "", "")
		require.NoError(t, err)
		_, err = inst.ApplyPayment(mustMoney(t, "5000000"), price, time.Now(), "CASH", "", "")
		require.NoError(t, err)

		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		assert.Equal(t, startVersion+2, inst.Version)
	})
}

func TestInstallment_Overdue(t *testing.T) {
	t.Run("not overdue before due date", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")
		assert.False(t, inst.IsOverdue())
		assert.Equal(t, 0, inst.DaysOverdue())
	})

	t.Run("overdue after due date when unpaid", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")
		inst.DueDate = time.Now().AddDate(0, 0, -10)

		assert.True(t, inst.IsOverdue())
		assert.Equal(t, 10, inst.DaysOverdue())
	})

	t.Run("paid installment is never overdue", func(t *testing.T) {
		inst := createTestInstallment(t, "2.500")
		inst.DueDate = time.Now().AddDate(0, 0, -10)

		_, err := inst.ApplyPayment(mustMoney(t, "5000000"), decimal.RequireFromString("2000000"), time.Now(), "CASH", "", "")
		require.NoError(t, err)

		assert.False(t, inst.IsOverdue())
		assert.Equal(t, 0, inst.DaysOverdue())
	})

	t.Run("late payment still settles", func(t *testing.T) {
		inst := createTestInstallment(t, "12.500")
		inst.DueDate = time.Now().AddDate(0, 0, -5)
		require.True(t, inst.IsOverdue())

		settled, err := inst.ApplyPayment(mustMoney(t, "5000000"), decimal.RequireFromString("2000000"), time.Now(), "CASH", "", "")
		require.NoError(t, err)
		assert.Equal(t, "2.500", settled.String())
	})
}
