package services

import (
	"context"
	"math"
	"net/http"
	"testing"

	"balades-api/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGeoService_RebuildAndNearby(t *testing.T) {
	s, docs := seedStore(t,
		models.Balade{NomPOI: "Tour Eiffel", Categorie: "monument", GeoPoint: &models.GeoPoint{Lon: 2.2945, Lat: 48.8584}},
		models.Balade{NomPOI: "Musée du quai Branly", Categorie: "musée", GeoPoint: &models.GeoPoint{Lon: 2.2976, Lat: 48.8609}},
		models.Balade{NomPOI: "Canal Saint-Martin", Categorie: "promenade", GeoPoint: &models.GeoPoint{Lon: 2.3658, Lat: 48.8718}},
		models.Balade{NomPOI: "Sans position", Categorie: "parc"},
	)
	geo := NewGeoService(newTestRedis(t), s)
	ctx := context.Background()

	n, err := geo.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	near, err := geo.Nearby(ctx, 48.8584, 2.2945, 1000, "")
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "Tour Eiffel", near[0].NomPOI, "closest first")
	assert.Equal(t, "Musée du quai Branly", near[1].NomPOI)

	near, err = geo.Nearby(ctx, 48.8584, 2.2945, 1000, "musée")
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, docs[1].ID, near[0].ID)
}

func TestGeoService_IndexAndRemove(t *testing.T) {
	s, docs := seedStore(t, models.Balade{NomPOI: "Tour Eiffel", GeoPoint: &models.GeoPoint{Lon: 2.2945, Lat: 48.8584}})
	geo := NewGeoService(newTestRedis(t), s)
	ctx := context.Background()

	require.NoError(t, geo.Index(ctx, docs[0]))
	near, err := geo.Nearby(ctx, 48.8584, 2.2945, 100, "")
	require.NoError(t, err)
	assert.Len(t, near, 1)

	require.NoError(t, geo.Remove(ctx, docs[0].ID.Hex()))
	near, err = geo.Nearby(ctx, 48.8584, 2.2945, 100, "")
	require.NoError(t, err)
	assert.Empty(t, near)
}

func TestGeoService_DropsStaleEntries(t *testing.T) {
	s, docs := seedStore(t, models.Balade{NomPOI: "Tour Eiffel", GeoPoint: &models.GeoPoint{Lon: 2.2945, Lat: 48.8584}})
	geo := NewGeoService(newTestRedis(t), s)
	ctx := context.Background()

	require.NoError(t, geo.Index(ctx, docs[0]))
	_, err := s.DeleteByID(ctx, docs[0].ID.Hex())
	require.NoError(t, err)

	near, err := geo.Nearby(ctx, 48.8584, 2.2945, 100, "")
	require.NoError(t, err)
	assert.Empty(t, near)
}

func TestGeoService_NearbyRejectsBadArguments(t *testing.T) {
	geo := NewGeoService(newTestRedis(t), nil)
	ctx := context.Background()

	nan, inf := math.NaN(), math.Inf(1)
	for _, args := range [][3]float64{
		{91, 0, 10}, {0, 181, 10}, {0, 0, 0}, {0, 0, -5},
		{nan, 2.3, 10}, {48, nan, 10}, {48, 2, nan}, {48, 2, inf}, {-inf, 2, 10},
	} {
		_, err := geo.Nearby(ctx, args[0], args[1], args[2], "")
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err), "args %v", args)
	}
}
