package rollingfile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localTime(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.Local)
}

// TestFrequency_Bucket tests truncation to the day, hour and minute
func TestFrequency_Bucket(t *testing.T) {
	ts := localTime(2021, time.March, 30, 1, 2, 3)

	assert.True(t, Daily.Bucket(ts).Equal(localTime(2021, time.March, 30, 0, 0, 0)), "Daily should truncate to midnight")
	assert.True(t, Hourly.Bucket(ts).Equal(localTime(2021, time.March, 30, 1, 0, 0)), "Hourly should truncate to the hour")
	assert.True(t, Minutely.Bucket(ts).Equal(localTime(2021, time.March, 30, 1, 2, 0)), "Minutely should truncate to the minute")
}

// TestFrequency_BucketSameAndStraddling tests bucket equality inside and across boundaries
func TestFrequency_BucketSameAndStraddling(t *testing.T) {
	tests := []struct {
		name      string
		frequency Frequency
		t1        time.Time
		t2        time.Time
		same      bool
	}{
		{"daily same day", Daily, localTime(2021, 3, 30, 0, 0, 1), localTime(2021, 3, 30, 23, 59, 59), true},
		{"daily across midnight", Daily, localTime(2021, 3, 30, 23, 59, 59), localTime(2021, 3, 31, 0, 0, 0), false},
		{"hourly same hour", Hourly, localTime(2021, 3, 30, 1, 0, 0), localTime(2021, 3, 30, 1, 59, 59), true},
		{"hourly across hour", Hourly, localTime(2021, 3, 30, 1, 59, 59), localTime(2021, 3, 30, 2, 0, 0), false},
		{"hourly same hour other day", Hourly, localTime(2021, 3, 30, 1, 0, 0), localTime(2021, 3, 31, 1, 0, 0), false},
		{"minutely same minute", Minutely, localTime(2021, 3, 30, 1, 2, 0), localTime(2021, 3, 30, 1, 2, 59), true},
		{"minutely across minute", Minutely, localTime(2021, 3, 30, 1, 2, 59), localTime(2021, 3, 30, 1, 3, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same := tt.frequency.Bucket(tt.t1).Equal(tt.frequency.Bucket(tt.t2))
			assert.Equal(t, tt.same, same)
		})
	}
}

// TestFrequency_BucketUsesLocalTime tests that a UTC timestamp is bucketed in local time
func TestFrequency_BucketUsesLocalTime(t *testing.T) {
	ts := localTime(2021, time.March, 30, 1, 2, 3)
	assert.True(t, Hourly.Bucket(ts.UTC()).Equal(Hourly.Bucket(ts)), "Bucket should not depend on the location of the input")
}

// TestBasicCondition_FirstCallNeverRollsOnTime tests the first evaluation
func TestBasicCondition_FirstCallNeverRollsOnTime(t *testing.T) {
	c := NewBasicCondition().Minutely()

	_, ok := c.LastWrite()
	assert.False(t, ok, "A new condition should have no last write")

	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 2, 3), 0), "First call should not roll over on time")

	last, ok := c.LastWrite()
	assert.True(t, ok)
	assert.True(t, last.Equal(localTime(2021, 3, 30, 1, 2, 3)))
}

// TestBasicCondition_TimeOnly tests a condition with only a frequency
func TestBasicCondition_TimeOnly(t *testing.T) {
	c := NewBasicCondition().Hourly()

	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 0, 0), 0))
	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 30, 0), 1<<40), "Size should not matter without a size trigger")
	assert.True(t, c.ShouldRollover(localTime(2021, 3, 30, 2, 0, 0), 0), "New hour should roll over")
	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 2, 10, 0), 0), "Same hour as the previous call should not roll over")
}

// TestBasicCondition_SizeOnly tests a condition with only a size limit
func TestBasicCondition_SizeOnly(t *testing.T) {
	c := NewBasicCondition().WithMaxSize(100)

	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 0, 0), 0))
	assert.False(t, c.ShouldRollover(localTime(2022, 5, 31, 2, 0, 0), 99), "Time changes alone should not roll over")
	assert.False(t, c.ShouldRollover(localTime(2023, 1, 1, 0, 0, 0), 10))
	assert.True(t, c.ShouldRollover(localTime(2023, 1, 1, 0, 0, 0), 100), "Reaching the limit should roll over")
	assert.True(t, c.ShouldRollover(localTime(2023, 1, 1, 0, 0, 0), 150))
}

// TestBasicCondition_Both tests that either trigger is enough
func TestBasicCondition_Both(t *testing.T) {
	c := NewBasicCondition().Daily().WithMaxSize(10)

	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 0, 0), 0))
	assert.True(t, c.ShouldRollover(localTime(2021, 3, 30, 2, 0, 0), 10), "Size trigger should fire within the same day")
	assert.True(t, c.ShouldRollover(localTime(2021, 3, 31, 2, 0, 0), 0), "Time trigger should fire below the size limit")
	assert.False(t, c.ShouldRollover(localTime(2021, 3, 31, 3, 0, 0), 9))
}

// TestBasicCondition_NoTriggers tests that an empty condition never rolls over
func TestBasicCondition_NoTriggers(t *testing.T) {
	c := NewBasicCondition()

	assert.False(t, c.ShouldRollover(localTime(2021, 3, 30, 1, 0, 0), 0))
	assert.False(t, c.ShouldRollover(localTime(2030, 3, 30, 1, 0, 0), 1<<62))
}

// TestBasicCondition_RecordsLastWriteAlways tests the side effect on every call
func TestBasicCondition_RecordsLastWriteAlways(t *testing.T) {
	c := NewBasicCondition().Hourly()

	c.ShouldRollover(localTime(2021, 3, 30, 1, 0, 0), 0)
	require.True(t, c.ShouldRollover(localTime(2021, 3, 30, 2, 0, 0), 0))

	last, ok := c.LastWrite()
	assert.True(t, ok)
	assert.True(t, last.Equal(localTime(2021, 3, 30, 2, 0, 0)), "Last write should be updated even when rolling over")
}

// TestBasicCondition_Reconfigure tests clearing and setting triggers
func TestBasicCondition_Reconfigure(t *testing.T) {
	c := NewBasicCondition().Hourly().WithMaxSize(5)

	f, ok := c.Frequency()
	assert.True(t, ok)
	assert.Equal(t, Hourly, f)
	size, ok := c.MaxSize()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), size)

	c.WithoutFrequency().WithoutMaxSize()
	_, ok = c.Frequency()
	assert.False(t, ok)
	_, ok = c.MaxSize()
	assert.False(t, ok)

	c.WithFrequency(Minutely)
	f, _ = c.Frequency()
	assert.Equal(t, Minutely, f)
}

// TestDefaultCondition tests that the default rolls over daily
func TestDefaultCondition(t *testing.T) {
	c := DefaultCondition()

	f, ok := c.Frequency()
	assert.True(t, ok)
	assert.Equal(t, Daily, f)
	_, ok = c.MaxSize()
	assert.False(t, ok)
}

// TestConditionFunc tests the function adapter
func TestConditionFunc(t *testing.T) {
	calls := 0
	var c Condition = ConditionFunc(func(now time.Time, size uint64) bool {
		calls++
		return size > 3
	})

	assert.False(t, c.ShouldRollover(time.Now(), 3))
	assert.True(t, c.ShouldRollover(time.Now(), 4))
	assert.Equal(t, 2, calls)
}

// TestParseFrequency tests parsing frequency names
func TestParseFrequency(t *testing.T) {
	for input, expected := range map[string]Frequency{
		"daily":    Daily,
		"Hourly":   Hourly,
		" minute ": Minutely,
		"day":      Daily,
	} {
		f, err := ParseFrequency(input)
		assert.NoError(t, err, input)
		assert.Equal(t, expected, f, input)
	}

	_, err := ParseFrequency("weekly")
	assert.True(t, errors.Is(err, ErrInvalidFrequency), "Unknown names should return ErrInvalidFrequency")
}

// TestFrequency_Text tests the text marshalling used by config files
func TestFrequency_Text(t *testing.T) {
	var f Frequency
	require.NoError(t, f.UnmarshalText([]byte("hourly")))
	assert.Equal(t, Hourly, f)

	text, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "hourly", string(text))

	assert.Error(t, f.UnmarshalText([]byte("yearly")))
	assert.Equal(t, Hourly, f, "A failed unmarshal should leave the value unchanged")

	_, err = Frequency(0).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}
