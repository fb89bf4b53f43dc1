package services

import (
	"context"
	"math/rand"
	"sync"
)

// Seed coordinates for the simulated source (downtown San Francisco).
const (
	simSeedLatitude  = 37.7749
	simSeedLongitude = -122.4194
	simJitter        = 0.005
)

// SimulatedLocationSource synthesizes positions by jittering around a fixed
// seed. Real deployments plug a device-backed source instead.
type SimulatedLocationSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedLocationSource(seed int64) *SimulatedLocationSource {
	return &SimulatedLocationSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (sl *SimulatedLocationSource) CurrentLocation(ctx context.Context) (float64, float64, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	lat := simSeedLatitude + (sl.rng.Float64()-0.5)*2*simJitter
	lon := simSeedLongitude + (sl.rng.Float64()-0.5)*2*simJitter
	return lat, lon, nil
}
