package geoloc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingProvider struct{}

func (blockingProvider) CurrentCoordinate(ctx context.Context) (Coordinate, error) {
	<-ctx.Done()
	return Coordinate{}, ctx.Err()
}

type deniedProvider struct{}

func (deniedProvider) CurrentCoordinate(ctx context.Context) (Coordinate, error) {
	return Coordinate{}, ErrPermissionDenied
}

func TestRead_Fixed(t *testing.T) {
	p := Fixed{Coord: Coordinate{Latitude: 33.626057, Longitude: 73.071442}}

	coord, err := Read(context.Background(), p, time.Second)

	require.NoError(t, err)
	assert.Equal(t, p.Coord, coord)
}

func TestRead_TimeoutBoundsSlowProvider(t *testing.T) {
	start := time.Now()
	_, err := Read(context.Background(), blockingProvider{}, 20*time.Millisecond)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRead_PermissionDeniedPassesThrough(t *testing.T) {
	_, err := Read(context.Background(), deniedProvider{}, time.Second)

	assert.ErrorIs(t, err, ErrPermissionDenied)
}
