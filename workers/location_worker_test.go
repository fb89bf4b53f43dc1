package workers

import (
	"bayroute/models"
	"bayroute/services"
	"bayroute/storage"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopTransport struct{}

func (noopTransport) Send(ctx context.Context, record models.DeliveryRecord) error { return nil }

type stubSource struct{}

func (stubSource) CurrentLocation(ctx context.Context) (float64, float64, error) {
	return 37.7749, -122.4194, nil
}

func newWorkerEngine(t *testing.T) *services.BuddyService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := storage.NewRedisSnapshotStore(client)

	engine := services.NewBuddyService(store, noopTransport{}, stubSource{}, nil)
	engine.Initialize(context.Background())
	return engine
}

func TestWorkerSamplesDuringSharingTrip(t *testing.T) {
	engine := newWorkerEngine(t)

	_, err := engine.ToggleLiveLocationSharing(context.Background(), true)
	require.NoError(t, err)
	_, err = engine.StartTrip(context.Background(), models.StartTripRequest{Destination: "Library"})
	require.NoError(t, err)

	worker := StartLocationWorker(engine, stubSource{}, 10*time.Millisecond)
	defer worker.Stop()

	require.Eventually(t, func() bool {
		return len(engine.GetState().TripRoute) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerIdleWithoutTrip(t *testing.T) {
	engine := newWorkerEngine(t)

	worker := StartLocationWorker(engine, stubSource{}, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	worker.Stop()

	state := engine.GetState()
	assert.Nil(t, state.CurrentLocation)
	assert.Empty(t, state.TripRoute)
}

func TestWorkerIdleWhenSharingOff(t *testing.T) {
	engine := newWorkerEngine(t)

	_, err := engine.StartTrip(context.Background(), models.StartTripRequest{Destination: "Library"})
	require.NoError(t, err)

	worker := StartLocationWorker(engine, stubSource{}, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	worker.Stop()

	assert.Empty(t, engine.GetState().TripRoute)
}

func TestWorkerStopIsIdempotentWaiting(t *testing.T) {
	engine := newWorkerEngine(t)

	worker := StartLocationWorker(engine, stubSource{}, time.Hour)
	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
