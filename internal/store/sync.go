package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
)

// Run subscribes to the table's change feed, performs the initial load and
// applies events until ctx ends. A channel error schedules a full reload
// after reloadDelay; a timeout is not an error.
func (c *Collection[T]) Run(ctx context.Context, feed realtime.Feed, reloadDelay time.Duration) error {
	// subscribe before loading so no change falls between the two
	sub, err := feed.Subscribe(ctx, c.opts.Table)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.opts.Table, err)
	}
	defer sub.Close()

	var reload <-chan time.Time
	if err := c.Load(ctx); err != nil {
		reload = time.After(reloadDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-sub.Events:
			if !ok {
				return nil
			}
			if err := c.Apply(ev); err != nil {
				c.log.Warn().Err(err).Msg("ignoring change event")
			}

		case err, ok := <-sub.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, realtime.ErrTimedOut) {
				c.log.Debug().Msg("realtime channel timed out")
				continue
			}
			c.log.Error().Err(err).Dur("retry_in", reloadDelay).Msg("realtime channel error")
			if reload == nil {
				reload = time.After(reloadDelay)
			}

		case <-reload:
			reload = nil
			metrics.IncReload(c.opts.Table)
			if err := c.Load(ctx); err != nil {
				reload = time.After(reloadDelay)
			}
		}
	}
}
