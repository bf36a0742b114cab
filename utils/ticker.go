package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/pano/logging"
)

// SlowLogger starts a goroutine that logs every few seconds as long as the context has not timed
// out or was not cancelled. Call the returned function once the slow operation finishes.
func SlowLogger(ctx context.Context, msg, fieldName string, fieldVal interface{}, logger logging.Logger) func() {
	return slowLogger(ctx, clock.New(), msg, fieldName, fieldVal, logger)
}

func slowLogger(
	ctx context.Context,
	clk clock.Clock,
	msg, fieldName string,
	fieldVal interface{},
	logger logging.Logger,
) func() {
	slowTicker := clk.Ticker(2 * time.Second)
	firstTick := true

	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := clk.Now()
	go func() {
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				logger.Warnw(msg, fieldName, fieldVal, "time_elapsed", elapsed)
				if firstTick {
					slowTicker.Reset(3 * time.Second)
					firstTick = false
				} else {
					slowTicker.Reset(5 * time.Second)
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() { slowTicker.Stop(); cancel() }
}
