package schedule

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1:   "1st",
		2:   "2nd",
		3:   "3rd",
		4:   "4th",
		10:  "10th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		21:  "21st",
		22:  "22nd",
		23:  "23rd",
		31:  "31st",
		100: "100th",
		101: "101st",
		111: "111th",
		112: "112th",
	}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n), "n=%d", n)
	}
}

func TestOrdinal_OneToHundred(t *testing.T) {
	for n := 1; n <= 100; n++ {
		want := "th"
		if tens := (n / 10) % 10; tens != 1 {
			switch n % 10 {
			case 1:
				want = "st"
			case 2:
				want = "nd"
			case 3:
				want = "rd"
			}
		}
		assert.Equal(t, strconv.Itoa(n)+want, Ordinal(n))
	}
}

func TestParseNth(t *testing.T) {
	for _, s := range []string{"1st", "2nd", "3rd", "4th", "5th", "last"} {
		n, ok := ParseNth(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, n.String())
	}

	n, ok := ParseNth(" LAST ")
	assert.True(t, ok)
	assert.Equal(t, Last, n)

	for _, s := range []string{"", "6th", "first", "0th", "3"} {
		_, ok := ParseNth(s)
		assert.False(t, ok, s)
	}
}

func TestNthWeekday(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-09-21", "3rd Sunday"},
		{"2025-09-01", "1st Monday"},
		{"2025-09-07", "1st Sunday"},
		{"2025-09-08", "2nd Monday"},
		{"2025-09-28", "4th Sunday"},
		{"2025-09-29", "5th Monday"},
		{"2025-03-05", "1st Wednesday"},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, NthWeekday(d), tc.date)
	}
}

func TestParseWeekday(t *testing.T) {
	wd, ok := ParseWeekday("sunday")
	assert.True(t, ok)
	assert.Equal(t, time.Sunday, wd)

	wd, ok = ParseWeekday("TUE")
	assert.True(t, ok)
	assert.Equal(t, time.Tuesday, wd)

	_, ok = ParseWeekday("Su")
	assert.False(t, ok)
	_, ok = ParseWeekday("Funday")
	assert.False(t, ok)
}
