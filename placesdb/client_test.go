package placesdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mihrab.noorapp.org/internal/appconf"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err, "NewClient should succeed")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newSeededClient(t *testing.T) *Client {
	t.Helper()

	client := newTestClient(t)
	_, err := client.ImportSeed(context.Background())
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfigHandling(t *testing.T) {
	client, err := NewClient(NewConfig("/tmp/invalid_test_places.sqlite", appconf.Test, false))
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "test database must use in-memory storage")
}

func TestNewClient_ValidConfig(t *testing.T) {
	client := newTestClient(t)

	assert.NotNil(t, client.DB)
	assert.NotNil(t, client.Queries)
	assert.Equal(t, 1, client.DB.Stats().MaxOpenConnections)
}

func TestTableCounts(t *testing.T) {
	client := newTestClient(t)

	counts, err := client.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 0, counts["places"])
	assert.Equal(t, 0, counts["import_metadata"])

	_, err = client.ImportSeed(context.Background())
	require.NoError(t, err)

	counts, err = client.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 62, counts["places"])
	assert.Equal(t, 1, counts["import_metadata"])
}

func TestFindPlace(t *testing.T) {
	client := newSeededClient(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		query       string
		wantName    string
		wantCountry string
	}{
		{name: "exact", query: "Cairo", wantName: "Cairo", wantCountry: "EG"},
		{name: "case insensitive", query: "kuala lumpur", wantName: "Kuala Lumpur", wantCountry: "MY"},
		{name: "ascii name", query: "sao paulo", wantName: "São Paulo", wantCountry: "BR"},
		{name: "surrounding spaces", query: "  Mecca ", wantName: "Mecca", wantCountry: "SA"},
		{name: "apostrophe", query: "Sana'a", wantName: "Sana'a", wantCountry: "YE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			place, err := client.FindPlace(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, place.Name)
			assert.Equal(t, tt.wantCountry, place.Country)
		})
	}

	t.Run("unknown place", func(t *testing.T) {
		_, err := client.FindPlace(ctx, "Atlantis")
		assert.ErrorIs(t, err, ErrPlaceNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := client.FindPlace(ctx, " ")
		assert.ErrorIs(t, err, ErrPlaceNotFound)
	})
}

func TestFindPlacePrefersLargestPopulation(t *testing.T) {
	client := newSeededClient(t)
	ctx := context.Background()

	require.NoError(t, client.Queries.CreatePlace(ctx, CreatePlaceParams{
		Name: "Tripoli", AsciiName: "Tripoli", Country: "LB", Lat: 34.4367, Lon: 35.8497, Population: 229398,
	}))

	place, err := client.FindPlace(ctx, "Tripoli")
	require.NoError(t, err)
	assert.Equal(t, "LY", place.Country)
}

func TestSearchPlaces(t *testing.T) {
	client := newSeededClient(t)
	ctx := context.Background()

	t.Run("prefix ordered by population", func(t *testing.T) {
		places, err := client.SearchPlaces(ctx, "ca", 10)
		require.NoError(t, err)

		var names []string
		for _, p := range places {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Cairo", "Cape Town", "Casablanca"}, names)
	})

	t.Run("limit", func(t *testing.T) {
		places, err := client.SearchPlaces(ctx, "", 5)
		require.NoError(t, err)
		assert.Len(t, places, 5)
		assert.Equal(t, "Beijing", places[0].Name)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		places, err := client.SearchPlaces(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, places)

		places, err = client.SearchPlaces(ctx, "_airo", 10)
		require.NoError(t, err)
		assert.Empty(t, places)
	})

	t.Run("zero limit", func(t *testing.T) {
		places, err := client.SearchPlaces(ctx, "ca", 0)
		require.NoError(t, err)
		assert.Empty(t, places)
	})
}

func TestConcurrentLookups(t *testing.T) {
	client := newSeededClient(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := client.FindPlace(ctx, "Jakarta")
			done <- err
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent lookups timed out")
		}
	}
}
