package rollingfile

import "time"

// BasicCondition rolls over on a frequency and/or a size limit. Either
// trigger firing is enough; with neither set it never rolls over.
//
//	c := NewBasicCondition().Hourly().WithMaxSize(64 << 20)
type BasicCondition struct {
	lastWrite    time.Time
	hasLastWrite bool

	frequency    Frequency
	hasFrequency bool

	maxSize    uint64
	hasMaxSize bool
}

// NewBasicCondition returns a condition with no trigger set
func NewBasicCondition() *BasicCondition {
	return &BasicCondition{}
}

// DefaultCondition returns a condition that rolls over daily
func DefaultCondition() *BasicCondition {
	return NewBasicCondition().Daily()
}

// WithFrequency sets the time based trigger
func (c *BasicCondition) WithFrequency(f Frequency) *BasicCondition {
	c.frequency = f
	c.hasFrequency = true
	return c
}

// Daily rolls over when the date changes
func (c *BasicCondition) Daily() *BasicCondition {
	return c.WithFrequency(Daily)
}

// Hourly rolls over when the date or hour changes
func (c *BasicCondition) Hourly() *BasicCondition {
	return c.WithFrequency(Hourly)
}

// Minutely rolls over when the date, hour or minute changes
func (c *BasicCondition) Minutely() *BasicCondition {
	return c.WithFrequency(Minutely)
}

// WithMaxSize rolls over once the current file holds at least n bytes
func (c *BasicCondition) WithMaxSize(n uint64) *BasicCondition {
	c.maxSize = n
	c.hasMaxSize = true
	return c
}

// WithoutFrequency clears the time based trigger
func (c *BasicCondition) WithoutFrequency() *BasicCondition {
	c.frequency = 0
	c.hasFrequency = false
	return c
}

// WithoutMaxSize clears the size based trigger
func (c *BasicCondition) WithoutMaxSize() *BasicCondition {
	c.maxSize = 0
	c.hasMaxSize = false
	return c
}

// Frequency returns the time based trigger, if set
func (c *BasicCondition) Frequency() (Frequency, bool) {
	return c.frequency, c.hasFrequency
}

// MaxSize returns the size based trigger, if set
func (c *BasicCondition) MaxSize() (uint64, bool) {
	return c.maxSize, c.hasMaxSize
}

// LastWrite returns the timestamp seen by the previous ShouldRollover call
func (c *BasicCondition) LastWrite() (time.Time, bool) {
	return c.lastWrite, c.hasLastWrite
}

// ShouldRollover reports whether now falls in a different bucket than the
// previous call, or size reached the limit. It always records now as the
// last write, whatever the result.
func (c *BasicCondition) ShouldRollover(now time.Time, size uint64) bool {
	rollover := false

	// No previous write means no time based rollover on the first call
	if c.hasFrequency && c.hasLastWrite {
		if !c.frequency.Bucket(now).Equal(c.frequency.Bucket(c.lastWrite)) {
			rollover = true
		}
	}

	if c.hasMaxSize && size >= c.maxSize {
		rollover = true
	}

	c.lastWrite = now
	c.hasLastWrite = true
	return rollover
}
