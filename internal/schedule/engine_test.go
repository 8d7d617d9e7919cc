package schedule

import (
	"sync"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name   string
		draft  Draft
		anchor string
		want   Record
	}{
		{
			name:   "daily",
			draft:  Draft{Period: Daily, Day: "Monday", Month: mo.Some(4)},
			anchor: "2025-09-21",
			want:   Record{Period: Daily},
		},
		{
			name:   "weekly falls back to anchor weekday",
			draft:  Draft{Period: Weekly},
			anchor: "2025-09-21",
			want:   Record{Period: Weekly, Day: "Sunday"},
		},
		{
			name:   "weekly explicit day is canonicalised",
			draft:  Draft{Period: Weekly, Day: "wed"},
			anchor: "2025-09-21",
			want:   Record{Period: Weekly, Day: "Wednesday"},
		},
		{
			name:   "monthly date of month wins",
			draft:  Draft{Period: Monthly, DateOfMonth: mo.Some(15), Nth: "2nd", Weekday: "Tuesday"},
			anchor: "2025-09-21",
			want:   Record{Period: Monthly, Day: "15"},
		},
		{
			name:   "monthly nth weekday",
			draft:  Draft{Period: Monthly, Nth: "3rd", Weekday: "Sunday"},
			anchor: "2025-01-01",
			want:   Record{Period: Monthly, Day: "3rd Sunday"},
		},
		{
			name:   "monthly last weekday",
			draft:  Draft{Period: Monthly, Nth: "last", Weekday: "fri"},
			anchor: "2025-01-01",
			want:   Record{Period: Monthly, Day: "last Friday"},
		},
		{
			name:   "monthly day token",
			draft:  Draft{Period: Monthly, Day: "2nd Tuesday"},
			anchor: "2025-01-01",
			want:   Record{Period: Monthly, Day: "2nd Tuesday"},
		},
		{
			name:   "monthly derived from anchor",
			draft:  Draft{Period: Monthly},
			anchor: "2025-09-21",
			want:   Record{Period: Monthly, Day: "3rd Sunday"},
		},
		{
			name:   "monthly with only nth derives from anchor",
			draft:  Draft{Period: Monthly, Nth: "2nd"},
			anchor: "2025-09-21",
			want:   Record{Period: Monthly, Day: "3rd Sunday"},
		},
		{
			name:   "yearly derived from anchor",
			draft:  Draft{Period: Yearly},
			anchor: "2025-03-05",
			want:   Record{Period: Yearly, Day: "5", Month: 3},
		},
		{
			name:   "yearly explicit day keeps anchor month",
			draft:  Draft{Period: Yearly, Day: "17"},
			anchor: "2025-03-05",
			want:   Record{Period: Yearly, Day: "17", Month: 3},
		},
		{
			name:   "yearly explicit month wins over anchor",
			draft:  Draft{Period: Yearly, Day: "29", Month: mo.Some(2)},
			anchor: "2025-03-05",
			want:   Record{Period: Yearly, Day: "29", Month: 2},
		},
		{
			name:   "anchor with time of day",
			draft:  Draft{Period: Weekly},
			anchor: "2025-09-21T23:30:00+09:00",
			want:   Record{Period: Weekly, Day: "Sunday"},
		},
		{
			name:   "period is case-insensitive",
			draft:  Draft{Period: "Weekly"},
			anchor: "2025-09-21",
			want:   Record{Period: Weekly, Day: "Sunday"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.draft, tc.anchor)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	cases := []struct {
		name   string
		draft  Draft
		anchor string
		want   error
	}{
		{"invalid anchor", Draft{Period: Daily}, "not-a-date", ErrInvalidAnchorDate},
		{"impossible anchor", Draft{Period: Daily}, "2025-02-30", ErrInvalidAnchorDate},
		{"missing period", Draft{}, "2025-09-21", ErrMissingPeriod},
		{"unknown period", Draft{Period: "hourly"}, "2025-09-21", ErrUnknownPeriod},
		{"bad weekday", Draft{Period: Weekly, Day: "Funday"}, "2025-09-21", ErrInvalidDay},
		{"date of month out of range", Draft{Period: Monthly, DateOfMonth: mo.Some(32)}, "2025-09-21", ErrInvalidDay},
		{"date of month out of range with nth set", Draft{Period: Monthly, DateOfMonth: mo.Some(32), Nth: "2nd", Weekday: "Monday"}, "2025-09-21", ErrInvalidDay},
		{"bad nth", Draft{Period: Monthly, Nth: "6th", Weekday: "Sunday"}, "2025-09-21", ErrInvalidDay},
		{"bad day token", Draft{Period: Monthly, Day: "whenever"}, "2025-09-21", ErrInvalidDay},
		{"yearly month out of range", Draft{Period: Yearly, Month: mo.Some(13)}, "2025-09-21", ErrInvalidMonth},
		{"yearly day not in month", Draft{Period: Yearly, Day: "31", Month: mo.Some(4)}, "2025-09-21", ErrInvalidDay},
		{"yearly day not numeric", Draft{Period: Yearly, Day: "first"}, "2025-09-21", ErrInvalidDay},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.draft, tc.anchor)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEngine_StrictMonthly(t *testing.T) {
	e := Engine{StrictMonthly: true}

	_, err := e.Normalize(Draft{Period: Monthly}, "2025-09-21")
	assert.ErrorIs(t, err, ErrIncompleteMonthlyRule)

	_, err = e.Normalize(Draft{Period: Monthly, Weekday: "Sunday"}, "2025-09-21")
	assert.ErrorIs(t, err, ErrIncompleteMonthlyRule)

	got, err := e.Normalize(Draft{Period: Monthly, DateOfMonth: mo.Some(3)}, "2025-09-21")
	require.NoError(t, err)
	assert.Equal(t, Record{Period: Monthly, Day: "3"}, got)
}

func TestRoundTrip_MonthlyNumeric(t *testing.T) {
	rec, err := Normalize(Draft{Period: Monthly, DateOfMonth: mo.Some(15)}, "2025-09-21")
	require.NoError(t, err)

	d := Denormalize(rec)
	dom, ok := d.DateOfMonth.Get()
	assert.True(t, ok)
	assert.Equal(t, 15, dom)
	assert.Empty(t, d.Nth)
	assert.Empty(t, d.Weekday)
}

func TestRoundTrip_MonthlyNthWeekday(t *testing.T) {
	rec, err := Normalize(Draft{Period: Monthly, Nth: "2nd", Weekday: "Tuesday"}, "2025-09-21")
	require.NoError(t, err)

	d := Denormalize(rec)
	assert.Equal(t, "2nd", d.Nth)
	assert.Equal(t, "Tuesday", d.Weekday)
	assert.True(t, d.DateOfMonth.IsAbsent())

	again, err := Normalize(d, "2030-01-01")
	require.NoError(t, err)
	assert.Equal(t, rec, again)
}

func TestDenormalize(t *testing.T) {
	assert.Equal(t,
		Draft{Period: Weekly, Day: "Sunday"},
		Denormalize(Record{Period: Weekly, Day: "Sunday"}))

	assert.Equal(t,
		Draft{Period: Daily},
		Denormalize(Record{Period: Daily}))

	assert.Equal(t,
		Draft{Period: Yearly, Day: "5", Month: mo.Some(3)},
		Denormalize(Record{Period: Yearly, Day: "5", Month: 3}))

	// Unrecognised monthly shapes are handed back for correction.
	assert.Equal(t,
		Draft{Period: Monthly, Weekday: "third Sunday"},
		Denormalize(Record{Period: Monthly, Day: "third Sunday"}))
}

func TestRecord_Rule(t *testing.T) {
	rule, err := Record{Period: Monthly, Day: "last Friday"}.Rule()
	require.NoError(t, err)
	assert.Equal(t, MonthlyWeekdayRule{N: Last, Weekday: 5}, rule)

	_, err = Record{Period: Yearly, Day: "5"}.Rule()
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = Record{Period: Weekly}.Rule()
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = Record{}.Rule()
	assert.ErrorIs(t, err, ErrMissingPeriod)
}

func TestNormalize_Concurrent(t *testing.T) {
	d := Draft{Period: Monthly}
	want, err := Normalize(d, "2025-09-21")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Normalize(d, "2025-09-21")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
