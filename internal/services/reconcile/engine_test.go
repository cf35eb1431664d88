package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name   string
		volume string
		profit string
		want   string
	}{
		{"ten million at twenty percent", "10000000", "20", "100000"},
		{"twelve million at twenty percent", "12000000", "20", "120000"},
		{"zero volume", "0", "50", "0"},
		{"zero profit", "5000000", "0", "0"},
		{"full profit", "1000000", "100", "50000"},
		// 333333 x 33.33% x 5% = 5554.994445
		{"fractional result rounds to kobo", "333333", "33.33", "5554.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTax(dec(tt.volume), dec(tt.profit))
			assert.True(t, dec(tt.want).Equal(got),
				"want %s got %s", tt.want, got)
		})
	}
}

func TestComputeTaxNeverNegative(t *testing.T) {
	volumes := []string{"0", "1", "999.99", "10000000", "123456789.12"}
	profits := []string{"0", "0.01", "12.5", "50", "100"}

	for _, v := range volumes {
		for _, p := range profits {
			got := ComputeTax(dec(v), dec(p))
			require.False(t, got.IsNegative(),
				"ComputeTax(%s, %s) = %s", v, p, got)
		}
	}
}

func TestAdditionalDue(t *testing.T) {
	tests := []struct {
		name string
		tax  string
		paid string
		want string
	}{
		{"nothing paid yet", "100000", "0", "100000"},
		{"partial payment", "120000", "100000", "20000"},
		{"exactly settled", "100000", "100000", "0"},
		{"downward revision yields zero not a refund", "80000", "100000", "0"},
		{"zero liability", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdditionalDue(dec(tt.tax), dec(tt.paid))
			assert.True(t, dec(tt.want).Equal(got),
				"want %s got %s", tt.want, got)
		})
	}
}

func TestAdditionalDueZeroWheneverOverpaid(t *testing.T) {
	for _, pair := range [][2]string{
		{"0", "0.01"}, {"50", "50"}, {"99.99", "100"}, {"1", "1000000"},
	} {
		got := AdditionalDue(dec(pair[0]), dec(pair[1]))
		require.True(t, got.IsZero(), "AdditionalDue(%s, %s) = %s", pair[0], pair[1], got)
	}
}
