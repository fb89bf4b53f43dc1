package workers

import (
	"bayroute/interfaces"
	"bayroute/services"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSampleInterval is the location cadence during a sharing trip.
const DefaultSampleInterval = 30 * time.Second

// LocationWorker owns the sampling timer the engine deliberately does not
// have. While a trip is active with live sharing on, it pulls the location
// source on each tick and pushes the sample into the engine.
type LocationWorker struct {
	buddyService *services.BuddyService
	locSource    interfaces.LocationSource
	interval     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func StartLocationWorker(buddyService *services.BuddyService, locSource interfaces.LocationSource, interval time.Duration) *LocationWorker {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	worker := &LocationWorker{
		buddyService: buddyService,
		locSource:    locSource,
		interval:     interval,
		ctx:          ctx,
		cancel:       cancel,
	}

	worker.wg.Add(1)
	go worker.run()

	logrus.Info("Location worker started, interval: ", interval)
	return worker
}

func (lw *LocationWorker) run() {
	defer lw.wg.Done()

	ticker := time.NewTicker(lw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-lw.ctx.Done():
			return
		case <-ticker.C:
			lw.sample()
		}
	}
}

func (lw *LocationWorker) sample() {
	state := lw.buddyService.GetState()
	if !state.TripActive || !state.LiveLocationSharing {
		return
	}

	latitude, longitude, err := lw.locSource.CurrentLocation(lw.ctx)
	if err != nil {
		logrus.Warn("Location source read failed: ", err)
		return
	}

	if _, err := lw.buddyService.UpdateLocation(lw.ctx, latitude, longitude); err != nil {
		logrus.Warn("Scheduled location update failed: ", err)
	}
}

// Stop halts the sampling loop and waits for it to drain.
func (lw *LocationWorker) Stop() {
	lw.cancel()
	lw.wg.Wait()
	logrus.Info("Location worker stopped")
}
