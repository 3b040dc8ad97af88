package widget

// QuoteLifetime is how many one-second ticks a quote stays confirmable.
const QuoteLifetime = 60

// Countdown is the client-side expiry timer for a quoted conversion. It is
// a value: Sync and Tick return the updated countdown.
type Countdown struct {
	epoch     uint64
	remaining int
	armed     bool
}

// Remaining returns the seconds left to confirm.
func (c Countdown) Remaining() int {
	return c.remaining
}

// Armed reports whether the countdown is tracking a conversion.
func (c Countdown) Armed() bool {
	return c.armed
}

// Sync resets the countdown for each new conversion and clears it when no
// conversion is in progress.
func (c Countdown) Sync(s *State) Countdown {
	conv := s.ConversionInProgress
	if conv == nil {
		return Countdown{}
	}
	if conv.Epoch != c.epoch {
		return Countdown{epoch: conv.Epoch, remaining: QuoteLifetime, armed: true}
	}
	return c
}

// Tick advances the countdown by one second. It is suspended while the
// quote is pending, while a submit is outstanding and after completion.
// Zero stays on screen for a full tick; expired is true exactly once, on
// the tick after that.
func (c Countdown) Tick(s *State) (next Countdown, expired bool) {
	c = c.Sync(s)
	conv := s.ConversionInProgress
	if !c.armed || conv.Quote == nil || conv.IsSubmitting || conv.Complete {
		return c, false
	}
	if c.remaining <= 0 {
		c.armed = false
		return c, true
	}
	c.remaining--
	return c, false
}
