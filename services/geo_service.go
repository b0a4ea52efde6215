package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"balades-api/logging"
	"balades-api/models"
	"balades-api/store"
	apierrors "balades-api/utils/errors"

	"github.com/redis/go-redis/v9"
)

const (
	geoKey           = "balades:geo"
	nearbyLimit      = 50
	msgNearbyFailed  = "Erreur lors de la recherche des balades à proximité."
	msgNearbyBadArgs = "Coordonnées ou rayon invalides."
)

// GeoService keeps a Redis GEO set of balade positions keyed by id.
type GeoService struct {
	redis *redis.Client
	store store.Store
}

func NewGeoService(client *redis.Client, s store.Store) *GeoService {
	return &GeoService{redis: client, store: s}
}

// Rebuild replaces the GEO set with the positions currently in the store.
func (s *GeoService) Rebuild(ctx context.Context) (int, error) {
	balades, err := s.store.Find(ctx, store.Where(store.NotNull("geo_point_2d")), store.FindOptions{})
	if err != nil {
		return 0, fmt.Errorf("load balades: %w", err)
	}
	if err := s.redis.Del(ctx, geoKey).Err(); err != nil {
		return 0, fmt.Errorf("clear geo set: %w", err)
	}

	indexed := 0
	for i := range balades {
		b := &balades[i]
		if err := s.Index(ctx, b); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("id", b.ID.Hex()).Msg("skipping balade in geo index")
			continue
		}
		if b.GeoPoint != nil {
			indexed++
		}
	}
	logging.Ctx(ctx).Info().Int("count", indexed).Msg("geo index rebuilt")
	return indexed, nil
}

// Index adds or moves b in the GEO set, or drops it when it has no position.
func (s *GeoService) Index(ctx context.Context, b *models.Balade) error {
	if b.GeoPoint == nil {
		return s.Remove(ctx, b.ID.Hex())
	}
	return s.redis.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      b.ID.Hex(),
		Longitude: b.GeoPoint.Lon,
		Latitude:  b.GeoPoint.Lat,
	}).Err()
}

func (s *GeoService) Remove(ctx context.Context, id string) error {
	return s.redis.ZRem(ctx, geoKey, id).Err()
}

// Nearby returns up to 50 balades within radius meters, closest first,
// optionally restricted to one categorie.
func (s *GeoService) Nearby(ctx context.Context, lat, lon, radius float64, categorie string) ([]models.Balade, error) {
	if !finite(lat, lon, radius) || lat < -90 || lat > 90 || lon < -180 || lon > 180 || radius <= 0 {
		return nil, apierrors.Validation(msgNearbyBadArgs)
	}
	results, err := s.redis.GeoRadius(ctx, geoKey, lon, lat, &redis.GeoRadiusQuery{
		Radius: radius,
		Unit:   "m",
		Sort:   "ASC",
		Count:  nearbyLimit,
	}).Result()
	if err != nil {
		return nil, storeFailure("nearby", err, msgNearbyFailed)
	}

	balades := []models.Balade{}
	for _, r := range results {
		b, err := s.store.FindByID(ctx, r.Name)
		if errors.Is(err, store.ErrNotFound) {
			// Stale entry left by a writer that bypassed the index.
			_ = s.Remove(ctx, r.Name)
			continue
		}
		if err != nil {
			return nil, storeFailure("nearby", err, msgNearbyFailed)
		}
		if categorie != "" && b.Categorie != categorie {
			continue
		}
		balades = append(balades, *b)
	}
	return balades, nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
