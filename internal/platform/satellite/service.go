// Package satellite fetches satellite listings and positions from a
// wheretheiss.at compatible API.
package satellite

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gqlgateway/internal/platform/rest"
)

const (
	DefaultBaseURL = "https://api.wheretheiss.at/v1/satellites"

	// ISSCatalogID is the NORAD id of the International Space Station.
	ISSCatalogID = 25544
)

type Service struct {
	fetcher rest.Fetcher
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for position timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(fetcher rest.Fetcher, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Satellites returns the upstream list of {name, id} records as decoded.
func (s *Service) Satellites(ctx context.Context) ([]any, error) {
	body, err := s.fetcher.FetchJSON(ctx, "/", nil)
	if err != nil {
		return nil, err
	}
	return rest.DecodeArray(body)
}

// Locations returns the ISS position at the current time, in miles.
func (s *Service) Locations(ctx context.Context) ([]any, error) {
	q := url.Values{}
	q.Set("timestamps", strconv.FormatInt(s.now().Unix(), 10))
	q.Set("units", "miles")

	body, err := s.fetcher.FetchJSON(ctx, fmt.Sprintf("/%d/positions", ISSCatalogID), q)
	if err != nil {
		return nil, err
	}
	return rest.DecodeArray(body)
}
