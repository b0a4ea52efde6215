package services

import (
	"context"
	"net/http"
	"testing"

	"balades-api/models"
	"balades-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordingIndexer captures geo index notifications.
type recordingIndexer struct {
	indexed []string
	removed []string
}

func (r *recordingIndexer) Index(_ context.Context, b *models.Balade) error {
	r.indexed = append(r.indexed, b.ID.Hex())
	return nil
}

func (r *recordingIndexer) Remove(_ context.Context, id string) error {
	r.removed = append(r.removed, id)
	return nil
}

func TestMutationService_Create(t *testing.T) {
	s := store.NewMemoryStore()
	geo := &recordingIndexer{}
	m := NewMutationService(s, geo)
	ctx := context.Background()

	b, err := m.Create(ctx, &CreateBaladeInput{
		NomPOI:     "Tour Eiffel",
		Adresse:    "Champ de Mars",
		Categorie:  "monument",
		CodePostal: "75007",
		GeoPoint:   &models.GeoPoint{Lon: 2.2945, Lat: 48.8584},
	})
	require.NoError(t, err)
	assert.False(t, b.ID.IsZero())
	assert.Equal(t, []string{}, b.MotCle)
	assert.Equal(t, []string{b.ID.Hex()}, geo.indexed)

	stored, err := s.FindByID(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "75007", stored.CodePostal)
}

func TestMutationService_CreateRequiresFields(t *testing.T) {
	valid := CreateBaladeInput{NomPOI: "Parc X", Adresse: "Rue Y", Categorie: "parc"}
	tests := []struct {
		name  string
		input func() CreateBaladeInput
	}{
		{"missing nom_poi", func() CreateBaladeInput { in := valid; in.NomPOI = ""; return in }},
		{"missing adresse", func() CreateBaladeInput { in := valid; in.Adresse = ""; return in }},
		{"missing categorie", func() CreateBaladeInput { in := valid; in.Categorie = ""; return in }},
		{"empty body", func() CreateBaladeInput { return CreateBaladeInput{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			m := NewMutationService(s, nil)
			in := tt.input()

			_, err := m.Create(context.Background(), &in)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

			n, err := s.Count(context.Background(), store.Filter{})
			require.NoError(t, err)
			assert.Zero(t, n, "nothing is created")
		})
	}
}

func TestMutationService_AppendKeyword(t *testing.T) {
	s, docs := seedStore(t, models.Balade{NomPOI: "Tour Eiffel", Adresse: "Champ de Mars", Categorie: "monument"})
	m := NewMutationService(s, nil)
	ctx := context.Background()
	id := docs[0].ID.Hex()

	b, err := m.AppendKeyword(ctx, id, &AppendKeywordInput{MotCle: "vue"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vue"}, b.MotCle)

	b, err = m.AppendKeyword(ctx, id, &AppendKeywordInput{MotCle: "fer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vue", "fer"}, b.MotCle)

	_, err = m.AppendKeyword(ctx, id, &AppendKeywordInput{MotCle: "vue"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	stored, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"vue", "fer"}, stored.MotCle, "duplicate leaves the document unchanged")

	_, err = m.AppendKeyword(ctx, id, &AppendKeywordInput{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = m.AppendKeyword(ctx, primitive.NewObjectID().Hex(), &AppendKeywordInput{MotCle: "vue"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestMutationService_UpdateOne(t *testing.T) {
	s, docs := seedStore(t, models.Balade{NomPOI: "Tour Eiffel", Adresse: "Champ de Mars", Categorie: "monument", Ville: "Paris"})
	geo := &recordingIndexer{}
	m := NewMutationService(s, geo)
	ctx := context.Background()
	id := docs[0].ID.Hex()

	name := "La Tour"
	b, err := m.UpdateOne(ctx, id, &UpdateBaladeInput{NomPOI: &name, MotCle: []string{"a", "a"}})
	require.NoError(t, err)
	assert.Equal(t, "La Tour", b.NomPOI)
	assert.Equal(t, "Paris", b.Ville, "absent fields are untouched")
	assert.Equal(t, []string{"a", "a"}, b.MotCle, "bulk keyword replacement does not dedupe")
	assert.Empty(t, geo.indexed)

	b, err = m.UpdateOne(ctx, id, &UpdateBaladeInput{GeoPoint: &models.GeoPoint{Lon: 2.29, Lat: 48.85}})
	require.NoError(t, err)
	require.NotNil(t, b.GeoPoint)
	assert.Equal(t, []string{id}, geo.indexed)

	b, err = m.UpdateOne(ctx, id, &UpdateBaladeInput{})
	require.NoError(t, err)
	assert.Equal(t, "La Tour", b.NomPOI)

	_, err = m.UpdateOne(ctx, primitive.NewObjectID().Hex(), &UpdateBaladeInput{NomPOI: &name})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateBaladeInput_Fields(t *testing.T) {
	ville := "Paris"
	in := UpdateBaladeInput{
		Ville:        &ville,
		FichierImage: &models.FichierImage{Filename: "a.png"},
	}
	f := in.Fields()
	assert.Len(t, f, 2)
	assert.Equal(t, "Paris", f["ville"])
	img, ok := f["fichier_image"].(models.FichierImage)
	require.True(t, ok)
	assert.Equal(t, []string{}, img.ColorSummary)
}

func TestMutationService_UpdateMany(t *testing.T) {
	s, _ := seedStore(t,
		models.Balade{NomPOI: "A", TexteDescription: "Un grand Bassin"},
		models.Balade{NomPOI: "B", TexteDescription: "bassin octogonal"},
		models.Balade{NomPOI: "C", TexteDescription: "Une tour"},
	)
	m := NewMutationService(s, nil)
	ctx := context.Background()

	matched, err := m.UpdateMany(ctx, "bassin", &RenameInput{NomPOI: "Bassin"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, matched)

	n, err := s.Count(ctx, store.Where(store.Regex(models.FieldNomPOI, "^Bassin$")))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = m.UpdateMany(ctx, "fontaine", &RenameInput{NomPOI: "x"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = m.UpdateMany(ctx, "bassin", &RenameInput{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestMutationService_Delete(t *testing.T) {
	s, docs := seedStore(t, models.Balade{NomPOI: "A"})
	geo := &recordingIndexer{}
	m := NewMutationService(s, geo)
	ctx := context.Background()
	id := docs[0].ID.Hex()

	_, err := m.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, geo.removed)

	_, err = m.Delete(ctx, id)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestMutationService_StoreFailures(t *testing.T) {
	m := NewMutationService(failingStore{}, nil)
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()
	name := "x"

	calls := map[string]func() error{
		"create": func() error {
			_, err := m.Create(ctx, &CreateBaladeInput{NomPOI: "a", Adresse: "b", Categorie: "c"})
			return err
		},
		"append":      func() error { _, err := m.AppendKeyword(ctx, id, &AppendKeywordInput{MotCle: "k"}); return err },
		"update_one":  func() error { _, err := m.UpdateOne(ctx, id, &UpdateBaladeInput{NomPOI: &name}); return err },
		"update_many": func() error { _, err := m.UpdateMany(ctx, "a", &RenameInput{NomPOI: "b"}); return err },
		"delete":      func() error { _, err := m.Delete(ctx, id); return err },
	}
	for op, call := range calls {
		t.Run(op, func(t *testing.T) {
			assert.Equal(t, http.StatusInternalServerError, statusOf(t, call()))
		})
	}
}

func TestMutationService_EmptyWebsiteIsStored(t *testing.T) {
	s := store.NewMemoryStore()
	m := NewMutationService(s, nil)
	q := NewQueryService(s)
	ctx := context.Background()

	created, err := m.Create(ctx, &CreateBaladeInput{NomPOI: "A", Adresse: "b", Categorie: "c", URLSite: strPtr("")})
	require.NoError(t, err)
	require.NotNil(t, created.URLSite)

	absent, err := m.Create(ctx, &CreateBaladeInput{NomPOI: "B", Adresse: "b", Categorie: "c"})
	require.NoError(t, err)

	site, err := q.WithWebsite(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, site.Count, "an empty url_site is non-null")
	assert.Equal(t, created.ID, site.Balades[0].ID)

	_, err = m.UpdateOne(ctx, absent.ID.Hex(), &UpdateBaladeInput{URLSite: strPtr("")})
	require.NoError(t, err)
	site, err = q.WithWebsite(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, site.Count, "create and update-one agree")
}
