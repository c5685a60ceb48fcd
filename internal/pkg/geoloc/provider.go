package geoloc

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTimeout          = errors.New("location read timed out")
	ErrPermissionDenied = errors.New("location permission denied")
)

// Coordinate is a single WGS84 reading.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Provider supplies the current device coordinate on demand. A read may
// fail or hang; callers bound it with Read and a timeout.
type Provider interface {
	CurrentCoordinate(ctx context.Context) (Coordinate, error)
}

// Read fetches a coordinate from the provider bounded by timeout. Context
// expiry is reported as ErrTimeout so callers can distinguish a slow
// provider from a denied one.
func Read(ctx context.Context, p Provider, timeout time.Duration) (Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		coord Coordinate
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		coord, err := p.CurrentCoordinate(ctx)
		ch <- result{coord, err}
	}()

	select {
	case <-ctx.Done():
		return Coordinate{}, ErrTimeout
	case res := <-ch:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return Coordinate{}, ErrTimeout
			}
			return Coordinate{}, res.err
		}
		return res.coord, nil
	}
}

// Fixed is a Provider that always returns the same coordinate. Used when a
// request already carries a device reading.
type Fixed struct {
	Coord Coordinate
}

func (f Fixed) CurrentCoordinate(ctx context.Context) (Coordinate, error) {
	return f.Coord, nil
}
