package graph

import (
	"context"
	"errors"
	"testing"

	"gqlgateway/internal/catalog"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSatellites struct {
	mock.Mock
}

func (m *mockSatellites) Satellites(ctx context.Context) ([]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func (m *mockSatellites) Locations(ctx context.Context) ([]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

type mockAstronomy struct {
	mock.Mock
}

func (m *mockAstronomy) APOD(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockAstronomy) NEOs(ctx context.Context) ([]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

func params(source interface{}, d Deps) graphql.ResolveParams {
	return graphql.ResolveParams{
		Source:  source,
		Args:    map[string]interface{}{},
		Context: WithDeps(context.Background(), d),
	}
}

// resolve runs a resolver and collects its thunk, if it returned one.
func resolve(t *testing.T, fn graphql.FieldResolveFn, p graphql.ResolveParams) (interface{}, error) {
	t.Helper()
	v, err := fn(p)
	if err != nil {
		return nil, err
	}
	if thunk, ok := v.(func() (interface{}, error)); ok {
		return thunk()
	}
	return v, nil
}

func TestResolveLibraries(t *testing.T) {
	d := Deps{Catalog: catalog.MustFixtures()}
	want := []catalog.Library{{Branch: "downtown"}, {Branch: "riverside"}}

	for i := 0; i < 3; i++ {
		got, err := resolveLibraries(params(nil, d))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResolveLibraryBooks(t *testing.T) {
	d := Deps{Catalog: catalog.MustFixtures()}

	t.Run("value parent", func(t *testing.T) {
		got, err := resolveLibraryBooks(params(catalog.Library{Branch: "riverside"}, d))
		require.NoError(t, err)
		assert.Equal(t, []catalog.Book{{Title: "The Awakening", Author: "Kate Chopin", Branch: "riverside"}}, got)
	})

	t.Run("pointer parent", func(t *testing.T) {
		got, err := resolveLibraryBooks(params(&catalog.Library{Branch: "downtown"}, d))
		require.NoError(t, err)
		assert.Equal(t, []catalog.Book{{Title: "City of Glass", Author: "Paul Auster", Branch: "downtown"}}, got)
	})

	t.Run("branch without books", func(t *testing.T) {
		got, err := resolveLibraryBooks(params(catalog.Library{Branch: "uptown"}, d))
		require.NoError(t, err)
		assert.Equal(t, []catalog.Book{}, got)
	})

	t.Run("unexpected parent", func(t *testing.T) {
		_, err := resolveLibraryBooks(params("downtown", d))
		assert.Error(t, err)
	})
}

func TestResolveBookAuthor(t *testing.T) {
	d := Deps{Catalog: catalog.MustFixtures()}

	t.Run("match", func(t *testing.T) {
		got, err := resolveBookAuthor(params(catalog.Book{Title: "The Awakening", Author: "Kate Chopin"}, d))
		require.NoError(t, err)
		assert.Equal(t, catalog.Author{Name: "Kate Chopin", FavoritePie: "lemon"}, got)
	})

	t.Run("miss is a typed error", func(t *testing.T) {
		got, err := resolveBookAuthor(params(catalog.Book{Title: "The Awakening", Author: "Nobody"}, d))
		assert.Nil(t, got)

		var missing *MissingReferenceError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "Book.author", missing.Field)
		assert.Equal(t, "Nobody", missing.Key)
		assert.ErrorIs(t, err, catalog.ErrDanglingReference)
		assert.Equal(t, "MISSING_REFERENCE", missing.Extensions()["code"])
	})
}

func TestResolveBookTitle(t *testing.T) {
	d := Deps{Catalog: catalog.MustFixtures()}

	got, err := resolveBookTitle(params(&catalog.Book{Title: "City of Glass", Author: "Paul Auster"}, d))
	require.NoError(t, err)
	assert.Equal(t, catalog.Title{Name: "City of Glass", Pages: 452, Ebook: false}, got)

	_, err = resolveBookTitle(params(catalog.Book{Title: "Missing", Author: "Paul Auster"}, d))
	var missing *MissingReferenceError
	assert.ErrorAs(t, err, &missing)
}

func TestResolvers_WithoutDeps(t *testing.T) {
	p := graphql.ResolveParams{Source: catalog.Library{Branch: "downtown"}, Context: context.Background()}

	for name, fn := range map[string]graphql.FieldResolveFn{
		"libraries":  resolveLibraries,
		"books":      resolveLibraryBooks,
		"satellites": resolveSatellites,
		"apod":       resolveAPOD,
	} {
		_, err := fn(p)
		assert.ErrorIs(t, err, ErrNoDeps, name)
	}
}

func TestResolveRemoteFields(t *testing.T) {
	sats := new(mockSatellites)
	astro := new(mockAstronomy)
	d := Deps{Catalog: catalog.MustFixtures(), Satellites: sats, Astronomy: astro}

	satellites := []any{map[string]any{"name": "iss", "id": float64(25544)}}
	sats.On("Satellites", mock.Anything).Return(satellites, nil).Once()
	sats.On("Locations", mock.Anything).Return(nil, errors.New("dial tcp: timeout")).Once()
	astro.On("APOD", mock.Anything).Return(map[string]any{"title": "M31"}, nil).Once()
	astro.On("NEOs", mock.Anything).Return(nil, nil).Once()

	got, err := resolve(t, resolveSatellites, params(nil, d))
	require.NoError(t, err)
	assert.Equal(t, satellites, got)

	got, err = resolve(t, resolveLocations, params(nil, d))
	assert.EqualError(t, err, "dial tcp: timeout")
	assert.Nil(t, got)

	got, err = resolve(t, resolveAPOD, params(nil, d))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "M31"}, got)

	got, err = resolve(t, resolveNEOs, params(nil, d))
	require.NoError(t, err)
	assert.Nil(t, got)

	sats.AssertExpectations(t)
	astro.AssertExpectations(t)
}

func TestFetchAsync_RecoversPanic(t *testing.T) {
	thunk := fetchAsync(context.Background(), func(context.Context) (interface{}, error) {
		panic("boom")
	})

	v, err := thunk()
	assert.Nil(t, v)
	assert.EqualError(t, err, "internal error: boom")
}
