package services

import (
	"context"
	"errors"

	"balades-api/logging"
	"balades-api/models"
	"balades-api/store"
	apierrors "balades-api/utils/errors"
	"balades-api/validation"
)

const (
	msgCreateRequired  = "Les champs nom_poi, adresse, et categorie sont obligatoires."
	msgCreateFailed    = "Erreur lors de l'ajout de la nouvelle balade."
	msgKeywordRequired = "Le mot clé est obligatoire."
	msgKeywordExists   = "Le mot clé existe déjà."
	msgKeywordFailed   = "Erreur lors de l'ajout du mot clé."
	msgUpdateFailed    = "Erreur lors de la mise à jour de la balade."
	msgRenameRequired  = "Le nom_poi est obligatoire."
	msgRenameNoMatch   = "Aucune balade à mettre à jour."
	msgRenameFailed    = "Erreur lors de la mise à jour des balades."
	msgDeleteFailed    = "Erreur lors de la suppression de la balade."

	MsgRenamed = "Balades mises à jour avec succès."
	MsgDeleted = "Balade supprimée avec succès."
)

// GeoIndexer is notified when a balade's position may have changed.
type GeoIndexer interface {
	Index(ctx context.Context, b *models.Balade) error
	Remove(ctx context.Context, id string) error
}

// CreateBaladeInput is the body of POST /add.
type CreateBaladeInput struct {
	NomPOI           string               `json:"nom_poi" validate:"required"`
	Adresse          string               `json:"adresse" validate:"required"`
	Categorie        string               `json:"categorie" validate:"required"`
	Identifiant      string               `json:"identifiant"`
	CodePostal       string               `json:"code_postal"`
	Ville            string               `json:"ville"`
	Parcours         []string             `json:"parcours"`
	MotCle           []string             `json:"mot_cle"`
	TexteIntro       string               `json:"texte_intro"`
	TexteDescription string               `json:"texte_description"`
	URLSite          *string              `json:"url_site"`
	URLImage         string               `json:"url_image"`
	CopyrightImage   string               `json:"copyright_image"`
	Legende          string               `json:"legende"`
	DateSaisie       string               `json:"date_saisie"`
	FichierImage     *models.FichierImage `json:"fichier_image"`
	GeoShape         *models.GeoShape     `json:"geo_shape"`
	GeoPoint         *models.GeoPoint     `json:"geo_point_2d"`
}

func (in *CreateBaladeInput) balade() *models.Balade {
	return &models.Balade{
		Identifiant:      in.Identifiant,
		NomPOI:           in.NomPOI,
		Adresse:          in.Adresse,
		CodePostal:       in.CodePostal,
		Ville:            in.Ville,
		Categorie:        in.Categorie,
		Parcours:         in.Parcours,
		MotCle:           in.MotCle,
		TexteIntro:       in.TexteIntro,
		TexteDescription: in.TexteDescription,
		URLSite:          in.URLSite,
		URLImage:         in.URLImage,
		CopyrightImage:   in.CopyrightImage,
		Legende:          in.Legende,
		DateSaisie:       in.DateSaisie,
		FichierImage:     in.FichierImage,
		GeoShape:         in.GeoShape,
		GeoPoint:         in.GeoPoint,
	}
}

// UpdateBaladeInput is the body of PUT /update-one/{id}. Absent fields are
// left untouched.
type UpdateBaladeInput struct {
	NomPOI           *string              `json:"nom_poi"`
	Adresse          *string              `json:"adresse"`
	Categorie        *string              `json:"categorie"`
	Identifiant      *string              `json:"identifiant"`
	CodePostal       *string              `json:"code_postal"`
	Ville            *string              `json:"ville"`
	Parcours         []string             `json:"parcours"`
	MotCle           []string             `json:"mot_cle"`
	TexteIntro       *string              `json:"texte_intro"`
	TexteDescription *string              `json:"texte_description"`
	URLSite          *string              `json:"url_site"`
	URLImage         *string              `json:"url_image"`
	CopyrightImage   *string              `json:"copyright_image"`
	Legende          *string              `json:"legende"`
	DateSaisie       *string              `json:"date_saisie"`
	FichierImage     *models.FichierImage `json:"fichier_image"`
	GeoShape         *models.GeoShape     `json:"geo_shape"`
	GeoPoint         *models.GeoPoint     `json:"geo_point_2d"`
}

// Fields returns the stored fields the update sets.
func (in *UpdateBaladeInput) Fields() store.Fields {
	f := store.Fields{}
	str := func(name string, v *string) {
		if v != nil {
			f[name] = *v
		}
	}
	str("nom_poi", in.NomPOI)
	str("adresse", in.Adresse)
	str("categorie", in.Categorie)
	str("identifiant", in.Identifiant)
	str("code_postal", in.CodePostal)
	str("ville", in.Ville)
	str("texte_intro", in.TexteIntro)
	str("texte_description", in.TexteDescription)
	str("url_site", in.URLSite)
	str("url_image", in.URLImage)
	str("copyright_image", in.CopyrightImage)
	str("legende", in.Legende)
	str("date_saisie", in.DateSaisie)
	if in.Parcours != nil {
		f["parcours"] = in.Parcours
	}
	if in.MotCle != nil {
		f["mot_cle"] = in.MotCle
	}
	if in.FichierImage != nil {
		img := *in.FichierImage
		if img.ColorSummary == nil {
			img.ColorSummary = []string{}
		}
		f["fichier_image"] = img
	}
	if in.GeoShape != nil {
		shape := *in.GeoShape
		if shape.Properties == nil {
			shape.Properties = map[string]any{}
		}
		f["geo_shape"] = shape
	}
	if in.GeoPoint != nil {
		f["geo_point_2d"] = *in.GeoPoint
	}
	return f
}

// AppendKeywordInput is the body of PUT /add-mot-cle/{id}.
type AppendKeywordInput struct {
	MotCle string `json:"mot_cle" validate:"required"`
}

// RenameInput is the body of PUT /update-many/{search}.
type RenameInput struct {
	NomPOI string `json:"nom_poi" validate:"required"`
}

type MutationService struct {
	store store.Store
	geo   GeoIndexer
}

// NewMutationService builds the write side. geo may be nil.
func NewMutationService(s store.Store, geo GeoIndexer) *MutationService {
	return &MutationService{store: s, geo: geo}
}

func (s *MutationService) reindex(ctx context.Context, b *models.Balade) {
	if s.geo == nil {
		return
	}
	if err := s.geo.Index(ctx, b); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("id", b.ID.Hex()).Msg("geo index update failed")
	}
}

func (s *MutationService) Create(ctx context.Context, in *CreateBaladeInput) (*models.Balade, error) {
	if err := validation.Struct(in); err != nil {
		return nil, apierrors.Validation(msgCreateRequired, err.Error())
	}
	b, err := s.store.Insert(ctx, in.balade())
	if errors.Is(err, store.ErrNameRequired) {
		return nil, apierrors.Validation(msgCreateRequired, err.Error())
	}
	if err != nil {
		return nil, storeFailure("create", err, msgCreateFailed)
	}
	logging.Ctx(ctx).Info().Str("id", b.ID.Hex()).Str("nom_poi", b.NomPOI).Msg("balade created")
	s.reindex(ctx, b)
	return b, nil
}

func (s *MutationService) AppendKeyword(ctx context.Context, id string, in *AppendKeywordInput) (*models.Balade, error) {
	if err := validation.Struct(in); err != nil {
		return nil, apierrors.Validation(msgKeywordRequired, err.Error())
	}
	b, err := s.store.PushUnique(ctx, id, models.FieldMotCle, in.MotCle)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apierrors.NotFound(msgNotFound)
	case errors.Is(err, store.ErrAlreadyPresent):
		return nil, apierrors.Validation(msgKeywordExists, "mot_cle="+in.MotCle)
	case err != nil:
		return nil, storeFailure("append_keyword", err, msgKeywordFailed)
	}
	return b, nil
}

func (s *MutationService) UpdateOne(ctx context.Context, id string, in *UpdateBaladeInput) (*models.Balade, error) {
	b, err := s.store.UpdateByID(ctx, id, in.Fields())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, storeFailure("update_one", err, msgUpdateFailed)
	}
	if in.GeoPoint != nil {
		s.reindex(ctx, b)
	}
	return b, nil
}

// UpdateMany renames every balade whose texte_description matches pattern.
func (s *MutationService) UpdateMany(ctx context.Context, pattern string, in *RenameInput) (int64, error) {
	if err := validation.Struct(in); err != nil {
		return 0, apierrors.Validation(msgRenameRequired, err.Error())
	}
	f := store.Where(store.IRegex(models.FieldTexteDescription, pattern))
	matched, err := s.store.UpdateMany(ctx, f, store.Fields{models.FieldNomPOI: in.NomPOI})
	if err != nil {
		return 0, storeFailure("update_many", err, msgRenameFailed)
	}
	if matched == 0 {
		return 0, apierrors.NotFound(msgRenameNoMatch)
	}
	logging.Ctx(ctx).Info().Int64("matched", matched).Str("pattern", pattern).Msg("balades renamed")
	return matched, nil
}

func (s *MutationService) Delete(ctx context.Context, id string) (*models.Balade, error) {
	b, err := s.store.DeleteByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, storeFailure("delete", err, msgDeleteFailed)
	}
	if s.geo != nil {
		if err := s.geo.Remove(ctx, id); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("geo index removal failed")
		}
	}
	logging.Ctx(ctx).Info().Str("id", id).Msg("balade deleted")
	return b, nil
}
