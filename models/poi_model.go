package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Balade is a point of interest along one of the Paris walking routes.
type Balade struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Identifiant      string             `json:"identifiant,omitempty" bson:"identifiant,omitempty"`
	NomPOI           string             `json:"nom_poi" bson:"nom_poi"`
	Adresse          string             `json:"adresse,omitempty" bson:"adresse,omitempty"`
	CodePostal       string             `json:"code_postal,omitempty" bson:"code_postal,omitempty"`
	Ville            string             `json:"ville,omitempty" bson:"ville,omitempty"`
	Categorie        string             `json:"categorie,omitempty" bson:"categorie,omitempty"`
	Parcours         []string           `json:"parcours" bson:"parcours"`
	MotCle           []string           `json:"mot_cle" bson:"mot_cle"`
	TexteIntro       string             `json:"texte_intro,omitempty" bson:"texte_intro,omitempty"`
	TexteDescription string             `json:"texte_description,omitempty" bson:"texte_description,omitempty"`
	URLSite          *string            `json:"url_site,omitempty" bson:"url_site,omitempty"`
	URLImage         string             `json:"url_image,omitempty" bson:"url_image,omitempty"`
	CopyrightImage   string             `json:"copyright_image,omitempty" bson:"copyright_image,omitempty"`
	Legende          string             `json:"legende,omitempty" bson:"legende,omitempty"`
	DateSaisie       string             `json:"date_saisie,omitempty" bson:"date_saisie,omitempty"`
	FichierImage     *FichierImage      `json:"fichier_image,omitempty" bson:"fichier_image,omitempty"`
	GeoShape         *GeoShape          `json:"geo_shape,omitempty" bson:"geo_shape,omitempty"`
	GeoPoint         *GeoPoint          `json:"geo_point_2d,omitempty" bson:"geo_point_2d,omitempty"`
}

// FichierImage describes the image file attached to a balade.
type FichierImage struct {
	Thumbnail        bool       `json:"thumbnail" bson:"thumbnail"`
	Filename         string     `json:"filename,omitempty" bson:"filename,omitempty"`
	Format           string     `json:"format,omitempty" bson:"format,omitempty"`
	Width            float64    `json:"width,omitempty" bson:"width,omitempty"`
	Height           float64    `json:"height,omitempty" bson:"height,omitempty"`
	MimeType         string     `json:"mimetype,omitempty" bson:"mimetype,omitempty"`
	ETag             string     `json:"etag,omitempty" bson:"etag,omitempty"`
	ID               string     `json:"id,omitempty" bson:"id,omitempty"`
	LastSynchronized *time.Time `json:"last_synchronized,omitempty" bson:"last_synchronized,omitempty"`
	ColorSummary     []string   `json:"color_summary" bson:"color_summary"`
}

// GeoShape is a GeoJSON feature.
type GeoShape struct {
	Type       string         `json:"type" bson:"type"`
	Geometry   Geometry       `json:"geometry" bson:"geometry"`
	Properties map[string]any `json:"properties" bson:"properties"`
}

type Geometry struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

type GeoPoint struct {
	Lon float64 `json:"lon" bson:"lon"`
	Lat float64 `json:"lat" bson:"lat"`
}

// ArrondissementCount is one row of the per-arrondissement synthesis.
type ArrondissementCount struct {
	ID    string `json:"_id" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// Normalize replaces nil slices so they are stored as empty arrays.
func (b *Balade) Normalize() {
	if b.Parcours == nil {
		b.Parcours = []string{}
	}
	if b.MotCle == nil {
		b.MotCle = []string{}
	}
	if b.FichierImage != nil && b.FichierImage.ColorSummary == nil {
		b.FichierImage.ColorSummary = []string{}
	}
	if b.GeoShape != nil && b.GeoShape.Properties == nil {
		b.GeoShape.Properties = map[string]any{}
	}
}

// HasKeyword reports whether kw is already in the keyword list.
func (b *Balade) HasKeyword(kw string) bool {
	for _, k := range b.MotCle {
		if k == kw {
			return true
		}
	}
	return false
}

// Stored field names referenced by queries.
const (
	FieldNomPOI           = "nom_poi"
	FieldCodePostal       = "code_postal"
	FieldCategorie        = "categorie"
	FieldMotCle           = "mot_cle"
	FieldTexteIntro       = "texte_intro"
	FieldTexteDescription = "texte_description"
	FieldURLSite          = "url_site"
	FieldDateSaisie       = "date_saisie"
)
