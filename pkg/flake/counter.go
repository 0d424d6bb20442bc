package flake

// Counter tracks the last used timestamp and sequence number of one node.
// The zero value is ready to use. A Counter must not be shared between
// Generators.
type Counter struct {
	timestamp uint64
	seq       uint16
}

// Next returns the next (timestamp, sequence) pair for the current time in
// milliseconds. The sequence restarts at zero whenever the timestamp advances.
//
// Next fails with ErrExhausted when the sequence would overflow within the
// same millisecond and with ErrTimeDrift when now is earlier than the last
// recorded timestamp. The counter is left untouched on failure.
func (c *Counter) Next(now uint64) (uint64, uint16, error) {
	var seq uint16
	switch {
	case now > c.timestamp:
		seq = 0
	case now == c.timestamp:
		if c.seq == MaxSequence {
			return 0, 0, ErrExhausted
		}
		seq = c.seq + 1
	default:
		return 0, 0, ErrTimeDrift
	}

	c.timestamp, c.seq = now, seq
	return now, seq, nil
}

// Last returns the most recently issued timestamp and sequence number.
func (c *Counter) Last() (timestamp uint64, seq uint16) { return c.timestamp, c.seq }
