package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ironman-notifier/internal/model"
)

var tz = time.FixedZone("CST", 8*3600)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, tz) }

func TestHasPostedToday_Scenarios(t *testing.T) {
	start := day(2025, 9, 14)
	today := day(2025, 9, 16)
	require.True(t, HasPostedToday(2, start, today))
	require.False(t, HasPostedToday(1, start, today))
	require.False(t, HasPostedToday(3, start, today))
}

func TestHasPostedToday_Property(t *testing.T) {
	start := day(2025, 9, 14)
	for offset := -3; offset <= 40; offset++ {
		today := start.AddDate(0, 0, offset)
		for count := 0; count <= 35; count++ {
			require.Equal(t, offset == count, HasPostedToday(count, start, today), "offset=%d count=%d", offset, count)
		}
	}
}

func TestHasPostedToday_IgnoresClockTime(t *testing.T) {
	start := day(2025, 9, 14)
	late := time.Date(2025, 9, 15, 23, 59, 0, 0, tz)
	require.True(t, HasPostedToday(1, start, late))
}

func TestPartition(t *testing.T) {
	start := day(2025, 9, 14)
	today := day(2025, 9, 16)
	in := []model.PostStatus{
		{Username: "A (a)", PostCount: 2},
		{Username: "B (b)", PostCount: 1},
		{Username: "C (c)", PostCount: 5},
		{Username: "D (d)", PostCount: 0},
	}
	notPosted, posted := Partition(in, start, today, false)
	require.Equal(t, []model.PostStatus{in[1], in[2], in[3]}, notPosted)
	require.Equal(t, []model.PostStatus{in[0]}, posted)

	notPosted, posted = Partition(in, start, today, true)
	require.Equal(t, in, notPosted)
	require.Empty(t, posted)

	notPosted, posted = Partition(nil, start, today, false)
	require.Empty(t, notPosted)
	require.Empty(t, posted)
}
