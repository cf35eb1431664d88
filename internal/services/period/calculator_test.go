package period

import (
	"testing"
	"time"

	"taxgate/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	p := Current(now)

	assert.Equal(t, 2, p.Month) // March is month index 2
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, "March 2024", p.Label)
}

func TestPeriodOrdering(t *testing.T) {
	assert.True(t, New(11, 2023).Before(New(0, 2024)))
	assert.False(t, New(0, 2024).Before(New(11, 2023)))
	assert.False(t, New(3, 2024).Before(New(3, 2024)))
	assert.True(t, New(3, 2024).Equal(New(3, 2024)))

	assert.Equal(t, New(0, 2025), New(11, 2024).Next())
	assert.Equal(t, New(5, 2024), New(4, 2024).Next())
}

func TestMissing(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt *time.Time
		reports   []models.TaxReport
		want      []Period
	}{
		{
			name:      "no reports since creation",
			createdAt: timePtr(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
			want:      []Period{New(2, 2024), New(3, 2024), New(4, 2024)},
		},
		{
			name:      "gap in the middle",
			createdAt: timePtr(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
			reports: []models.TaxReport{
				{Month: 2, Year: 2024},
				{Month: 4, Year: 2024},
			},
			want: []Period{New(3, 2024)},
		},
		{
			name:      "fully filed",
			createdAt: timePtr(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
			reports: []models.TaxReport{
				{Month: 3, Year: 2024},
				{Month: 4, Year: 2024},
			},
			want: nil,
		},
		{
			name:      "missing creation date falls back to six months",
			createdAt: nil,
			want: []Period{
				New(11, 2023), New(0, 2024), New(1, 2024),
				New(2, 2024), New(3, 2024), New(4, 2024),
			},
		},
		{
			name:      "created this month has nothing missing",
			createdAt: timePtr(time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)),
			want:      nil,
		},
		{
			name:      "current period report does not affect missing set",
			createdAt: timePtr(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
			reports:   []models.TaxReport{{Month: 5, Year: 2024}},
			want:      []Period{New(4, 2024)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.createdAt, now, tt.reports)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingOrderedOldestFirst(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)

	got := Missing(&created, now, nil)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Before(got[i]), "periods must be oldest first")
	}
	assert.Equal(t, New(9, 2023), got[0])
	assert.Equal(t, New(4, 2024), got[len(got)-1])
}

func timePtr(t time.Time) *time.Time { return &t }
