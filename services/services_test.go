package services

import (
	"context"
	stderrors "errors"
	"testing"

	"balades-api/models"
	"balades-api/store"
	apierrors "balades-api/utils/errors"

	"github.com/stretchr/testify/require"
)

var errBoom = stderrors.New("connection reset")

// failingStore fails every call the services make.
type failingStore struct {
	store.Store
}

func (failingStore) Insert(context.Context, *models.Balade) (*models.Balade, error) {
	return nil, errBoom
}
func (failingStore) FindByID(context.Context, string) (*models.Balade, error) { return nil, errBoom }
func (failingStore) Find(context.Context, store.Filter, store.FindOptions) ([]models.Balade, error) {
	return nil, errBoom
}
func (failingStore) Count(context.Context, store.Filter) (int64, error) { return 0, errBoom }
func (failingStore) UpdateByID(context.Context, string, store.Fields) (*models.Balade, error) {
	return nil, errBoom
}
func (failingStore) UpdateMany(context.Context, store.Filter, store.Fields) (int64, error) {
	return 0, errBoom
}
func (failingStore) PushUnique(context.Context, string, string, string) (*models.Balade, error) {
	return nil, errBoom
}
func (failingStore) DeleteByID(context.Context, string) (*models.Balade, error) { return nil, errBoom }
func (failingStore) Distinct(context.Context, string) ([]string, error)            { return nil, errBoom }
func (failingStore) CountBySubstring(context.Context, string, int, int) ([]models.ArrondissementCount, error) {
	return nil, errBoom
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.True(t, stderrors.As(err, &apiErr), "expected *APIError, got %T", err)
	return apiErr.Status
}

func seedStore(t *testing.T, balades ...models.Balade) (*store.MemoryStore, []*models.Balade) {
	t.Helper()
	s := store.NewMemoryStore()
	out := make([]*models.Balade, 0, len(balades))
	for i := range balades {
		b, err := s.Insert(context.Background(), &balades[i])
		require.NoError(t, err)
		out = append(out, b)
	}
	return s, out
}

func strPtr(s string) *string { return &s }
