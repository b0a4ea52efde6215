package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterBSON(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   bson.D
	}{
		{
			name:   "zero filter matches everything",
			filter: Filter{},
			want:   bson.D{},
		},
		{
			name:   "not null",
			filter: Where(NotNull("url_site")),
			want:   bson.D{{Key: "url_site", Value: bson.D{{Key: "$ne", Value: nil}}}},
		},
		{
			name:   "array index exists",
			filter: Where(Exists("mot_cle.5")),
			want:   bson.D{{Key: "mot_cle.5", Value: bson.D{{Key: "$exists", Value: true}}}},
		},
		{
			name:   "anchored case-sensitive regex",
			filter: Where(Regex("code_postal", "07$")),
			want:   bson.D{{Key: "code_postal", Value: primitive.Regex{Pattern: "07$"}}},
		},
		{
			name:   "or of case-insensitive regexes",
			filter: AnyOf(IRegex("nom_poi", "tour"), IRegex("texte_intro", "tour")),
			want: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "nom_poi", Value: primitive.Regex{Pattern: "tour", Options: "i"}}},
				bson.D{{Key: "texte_intro", Value: primitive.Regex{Pattern: "tour", Options: "i"}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.BSON())
		})
	}
}

func TestSubstrBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "75007", want: "07"},
		{in: "7500", want: "0"},
		{in: "750", want: ""},
		{in: "", want: ""},
		{in: "750é", want: "é"},
		{in: "75é01", wantErr: true},
		{in: "750é1", want: "é"},
		{in: "7500é", wantErr: true},
	}
	for _, tt := range tests {
		got, err := substrBytes(tt.in, 3, 2)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLookup(t *testing.T) {
	doc := bson.M{
		"mot_cle":      primitive.A{"a", "b"},
		"geo_point_2d": bson.M{"lat": 48.85},
		"geo_shape":    primitive.D{{Key: "type", Value: "Feature"}},
	}

	v, ok := lookup(doc, "mot_cle.1")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = lookup(doc, "mot_cle.2")
	assert.False(t, ok)

	v, ok = lookup(doc, "geo_point_2d.lat")
	assert.True(t, ok)
	assert.Equal(t, 48.85, v)

	v, ok = lookup(doc, "geo_shape.type")
	assert.True(t, ok)
	assert.Equal(t, "Feature", v)

	_, ok = lookup(doc, "url_site")
	assert.False(t, ok)
}
