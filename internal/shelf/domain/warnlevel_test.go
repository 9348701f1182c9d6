package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	today := MustParseDate("14.03.2025")

	tests := []struct {
		name   string
		offset int
		th     Thresholds
		want   WarnLevel
	}{
		{"today is soon", 0, Thresholds{3, 0}, WarnSoon},
		{"yesterday without grace is expired", -1, Thresholds{3, 0}, WarnExpired},
		{"end of soon window", 3, Thresholds{3, 0}, WarnSoon},
		{"past soon window", 4, Thresholds{3, 0}, WarnFresh},
		{"far future", 365, Thresholds{3, 0}, WarnFresh},
		{"long expired", -30, Thresholds{3, 0}, WarnExpired},
		// diff == -grace is not < -grace and not in [0, soon]: Fresh.
		{"one day past with one day grace", -1, Thresholds{3, 1}, WarnFresh},
		{"two days past with one day grace", -2, Thresholds{3, 1}, WarnExpired},
		{"inside grace window", -1, Thresholds{5, 2}, WarnFresh},
		{"exactly at grace bound", -2, Thresholds{5, 2}, WarnFresh},
		{"beyond grace bound", -3, Thresholds{5, 2}, WarnExpired},
		{"soon window of one day", 1, Thresholds{1, 0}, WarnSoon},
		{"just outside one day window", 2, Thresholds{1, 0}, WarnFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(today.AddDays(tt.offset), today, tt.th))
		})
	}
}

func TestClassify_AcrossMonthAndLeapDay(t *testing.T) {
	today := MustParseDate("28.02.2024")
	assert.Equal(t, WarnSoon, Classify(MustParseDate("02.03.2024"), today, DefaultThresholds()))
	assert.Equal(t, WarnFresh, Classify(MustParseDate("03.03.2024"), today, DefaultThresholds()))
}

func TestClassifyText(t *testing.T) {
	today := MustParseDate("14.03.2025")

	level, err := ClassifyText("16.03.2025", today, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, WarnSoon, level)

	_, err = ClassifyText("2025-03-16", today, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestWarnLevel_RankAndParse(t *testing.T) {
	assert.Less(t, WarnExpired.Rank(), WarnSoon.Rank())
	assert.Less(t, WarnSoon.Rank(), WarnFresh.Rank())
	assert.Less(t, WarnFresh.Rank(), WarnLevel("").Rank())

	for in, want := range map[string]WarnLevel{"bald": WarnSoon, "Abgelaufen": WarnExpired, "ok": WarnFresh, "fresh": WarnFresh} {
		got, err := ParseWarnLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseWarnLevel("stale")
	assert.Error(t, err)
}

func TestThresholds_Clamp(t *testing.T) {
	tests := []struct {
		in   Thresholds
		want Thresholds
	}{
		{Thresholds{3, 0}, Thresholds{3, 0}},
		{Thresholds{3, 3}, Thresholds{3, 2}},
		{Thresholds{3, 10}, Thresholds{3, 2}},
		{Thresholds{0, 0}, Thresholds{1, 0}},
		{Thresholds{1, 1}, Thresholds{1, 0}},
		{Thresholds{99, 40}, Thresholds{30, 29}},
		{Thresholds{5, -2}, Thresholds{5, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Clamp(), "%+v", tt.in)
	}

	assert.Equal(t, DefaultThresholds(), ThresholdsOrDefault(nil))
	assert.Equal(t, Thresholds{7, 1}, ThresholdsOrDefault(&Thresholds{7, 1}))
}
