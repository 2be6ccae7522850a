package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplan-finance-core/internal/domain/money"
)

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthlyPayment(t *testing.T) {
	principal := money.NewFromInt(300_000_000, money.KRW)

	t.Run("EqualInstallment", func(t *testing.T) {
		// 300M KRW at 4% over 360 months: the textbook annuity payment is
		// about 1,432,246 KRW.
		got, err := MonthlyPayment(principal, pct("4"), 360, MethodEqualInstallment)
		require.NoError(t, err)
		assert.Equal(t, "1432246", got.Rounded().Amount().String())
	})

	t.Run("EqualInstallmentZeroRate", func(t *testing.T) {
		got, err := MonthlyPayment(principal, decimal.Zero, 360, MethodEqualInstallment)
		require.NoError(t, err)
		assert.Equal(t, "833333", got.Rounded().Amount().String())
	})

	t.Run("EqualPrincipalFirstPeriod", func(t *testing.T) {
		// 300M/360 principal plus 300M * 4%/12 interest = 833,333.33 + 1,000,000.
		got, err := MonthlyPayment(principal, pct("4"), 360, MethodEqualPrincipal)
		require.NoError(t, err)
		assert.Equal(t, "1833333", got.Rounded().Amount().String())
	})

	t.Run("Bullet", func(t *testing.T) {
		got, err := MonthlyPayment(principal, pct("4"), 360, MethodBullet)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.NewFromInt(1_000_000, money.KRW)))
	})

	t.Run("InvalidInputs", func(t *testing.T) {
		_, err := MonthlyPayment(money.Zero(money.KRW), pct("4"), 360, MethodBullet)
		assert.ErrorIs(t, err, ErrInvalidPrincipal)

		_, err = MonthlyPayment(principal, pct("4"), 0, MethodBullet)
		assert.ErrorIs(t, err, ErrInvalidTerm)

		_, err = MonthlyPayment(principal, pct("-1"), 360, MethodBullet)
		assert.ErrorIs(t, err, ErrNegativeRate)
	})
}

func TestRatio(t *testing.T) {
	t.Run("Percentage", func(t *testing.T) {
		got := Ratio(money.NewFromInt(24_000_000, money.KRW), money.NewFromInt(60_000_000, money.KRW))
		assert.True(t, got.Equal(decimal.NewFromInt(40)))
	})

	t.Run("ZeroDenominatorIsZeroPercent", func(t *testing.T) {
		got := Ratio(money.NewFromInt(24_000_000, money.KRW), money.Zero(money.KRW))
		assert.True(t, got.IsZero())
	})
}

func TestStressRate(t *testing.T) {
	base := pct("4")

	for _, region := range []Region{RegionSeoul, RegionGwacheon, RegionSejong, RegionBundang} {
		assert.True(t, StressRate(region, base).Equal(pct("5.5")), "region %s", region)
	}
	for _, region := range []Region{RegionGyeonggi, RegionIncheon, RegionOther} {
		assert.True(t, StressRate(region, base).Equal(pct("4.75")), "region %s", region)
	}
}

func TestLTVLimit(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		status HousingStatus
		want   int64
	}{
		{"RegulatedFirstTime", RegionSeoul, StatusFirstTimeBuyer, 50},
		{"RegulatedNewlywed", RegionSejong, StatusNewlywed, 60},
		{"RegulatedMultiOwner", RegionSeoul, StatusMultiOwner, 30},
		{"OtherFirstTime", RegionGyeonggi, StatusFirstTimeBuyer, 70},
		{"OtherSingleOwner", RegionOther, StatusSingleOwner, 60},
		{"UnknownStatusFallsBack", RegionOther, HousingStatus("CORPORATE"), 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, LTVLimit(tt.region, tt.status).Equal(decimal.NewFromInt(tt.want)))
		})
	}
}

func TestParseRepaymentMethod(t *testing.T) {
	t.Run("KnownTags", func(t *testing.T) {
		m, normalized := ParseRepaymentMethod("equal_installment")
		assert.Equal(t, MethodEqualInstallment, m)
		assert.False(t, normalized)

		m, normalized = ParseRepaymentMethod("BULLET")
		assert.Equal(t, MethodBullet, m)
		assert.False(t, normalized)
	})

	t.Run("UnknownTagNormalizes", func(t *testing.T) {
		m, normalized := ParseRepaymentMethod("balloon")
		assert.Equal(t, MethodEqualPrincipal, m)
		assert.True(t, normalized)
	})
}
