// Package sweeper returns succeeded operation statuses to idle once their
// cooldown passes, so controls relax on their own after a successful run.
// Failed statuses are never swept; those wait for an explicit reset.
package sweeper

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type statusTracker interface {
	SweepSucceeded(cooldown time.Duration) int
}

type StatusSweeper struct {
	interval time.Duration
	cooldown time.Duration
	ticker   *time.Ticker
	tracker  statusTracker
	done     chan struct{}
}

func NewStatusSweeper(interval string, cooldown string, tracker statusTracker) (*StatusSweeper, error) {
	logger := log.WithFields(log.Fields{"package": "sweeper", "event": "new_sweeper"})

	every, err := time.ParseDuration(interval)
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	hold, err := time.ParseDuration(cooldown)
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	sweeper := &StatusSweeper{
		interval: every,
		cooldown: hold,
		tracker:  tracker,
		ticker:   time.NewTicker(every),
		done:     make(chan struct{}),
	}

	return sweeper, nil
}

func (sweeper *StatusSweeper) StartSweeping() {
	logger := log.WithFields(log.Fields{"package": "sweeper", "event": "sweeping"})

	go func() {
		for {
			select {
			case <-sweeper.ticker.C:
				if swept := sweeper.tracker.SweepSucceeded(sweeper.cooldown); swept > 0 {
					logger.WithField("swept", swept).Debug("idled succeeded operations")
				}
			case <-sweeper.done:
				return
			}
		}
	}()
}

func (sweeper *StatusSweeper) Stop() {
	sweeper.ticker.Stop()
	close(sweeper.done)
}
