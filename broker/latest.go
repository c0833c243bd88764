package broker

import (
	"context"
	"time"
)

// DefaultLocatorStep is how far back LatestMessage seeks before its first
// probe: one week.
const DefaultLocatorStep = 7 * 24 * time.Hour

// LatestMessage approximates "read the most recent message of a topic" on a
// transport that only offers forward reads, time seeks and a pending probe.
//
// An empty topic blocks on a plain read. Otherwise the reader seeks to
// now-step, doubling the step until messages become pending, then drains
// everything pending and returns the last message read. The doubling bounds
// the seek count by log2(topicAge/step). Producers racing the drain can push
// the true tail past the returned message; for a bootstrap read of a
// retained-state topic that is acceptable.
func LatestMessage(ctx context.Context, r Reader, step time.Duration) (Message, error) {
	if step <= 0 {
		step = DefaultLocatorStep
	}
	if !r.HasNext() {
		return r.Next(ctx)
	}
	now := time.Now()
	if err := r.SeekTime(now.Add(-step)); err != nil {
		return nil, err
	}
	for !r.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step *= 2
		if err := r.SeekTime(now.Add(-step)); err != nil {
			return nil, err
		}
	}
	var last Message
	for r.HasNext() {
		msg, err := r.Next(ctx)
		if err != nil {
			return nil, err
		}
		last = msg
	}
	return last, nil
}
