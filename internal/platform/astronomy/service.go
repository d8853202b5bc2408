// Package astronomy fetches the astronomy picture of the day and near-earth
// object feeds from api.nasa.gov.
package astronomy

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gqlgateway/internal/platform/rest"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.nasa.gov"

	// NEOContractV1 is the only NEO shape served: a flat list of bodies for
	// today's date, taken out of the feed's near_earth_objects map. The
	// {near_earth_objects: [...]} envelope shape is not supported.
	NEOContractV1 = "v1"

	dateLayout = "2006-01-02"
)

type Service struct {
	fetcher rest.Fetcher
	apiKey  string
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source that decides which date is "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(fetcher rest.Fetcher, apiKey string, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, apiKey: apiKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// APOD returns today's astronomy picture record as decoded.
func (s *Service) APOD(ctx context.Context) (map[string]any, error) {
	body, err := s.fetcher.FetchJSON(ctx, "/planetary/apod", s.query(nil))
	if err != nil {
		return nil, err
	}
	return rest.DecodeObject(body)
}

// NEOs returns the near-earth objects listed under today's UTC date. A feed
// without an entry for today yields a nil list and no error.
func (s *Service) NEOs(ctx context.Context) ([]any, error) {
	today := s.Today()
	body, err := s.fetcher.FetchJSON(ctx, "/neo/rest/v1/feed", s.query(url.Values{
		"start_date": {today},
		"end_date":   {today},
	}))
	if err != nil {
		return nil, err
	}
	return IndexByDate(body, today)
}

// Today is the current UTC date in the feed's key format.
func (s *Service) Today() string {
	return s.now().UTC().Format(dateLayout)
}

func (s *Service) query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", s.apiKey)
	return q
}

// IndexByDate selects near_earth_objects[date] from a raw feed body.
func IndexByDate(body []byte, date string) ([]any, error) {
	res := gjson.GetBytes(body, "near_earth_objects."+gjsonEscape(date))
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("near_earth_objects[%s]: %w", date, rest.ErrUnexpectedShape)
	}
	return rest.DecodeArray([]byte(res.Raw))
}

// gjsonEscape escapes path syntax so a key is matched literally.
func gjsonEscape(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
