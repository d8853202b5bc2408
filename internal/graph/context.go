package graph

import (
	"context"
	"errors"

	"gqlgateway/internal/catalog"
)

// ErrNoDeps is returned by a resolver executed without WithDeps.
var ErrNoDeps = errors.New("graph: resolver dependencies missing from context")

// SatelliteSource is the satellite data the schema can reach.
type SatelliteSource interface {
	Satellites(ctx context.Context) ([]any, error)
	Locations(ctx context.Context) ([]any, error)
}

// AstronomySource is the astronomy data the schema can reach.
type AstronomySource interface {
	APOD(ctx context.Context) (map[string]any, error)
	NEOs(ctx context.Context) ([]any, error)
}

// Deps is everything a resolver may consult. Catalog is shared and read-only;
// the sources are built per request.
type Deps struct {
	Catalog    *catalog.Catalog
	Satellites SatelliteSource
	Astronomy  AstronomySource
}

type depsKey struct{}

func WithDeps(ctx context.Context, d Deps) context.Context {
	return context.WithValue(ctx, depsKey{}, d)
}

func DepsFrom(ctx context.Context) (Deps, bool) {
	if ctx == nil {
		return Deps{}, false
	}
	d, ok := ctx.Value(depsKey{}).(Deps)
	return d, ok
}
