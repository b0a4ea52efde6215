package services

import (
	"context"
	"errors"
	"regexp"

	"balades-api/metrics"
	"balades-api/models"
	"balades-api/store"
	apierrors "balades-api/utils/errors"
)

const (
	msgNotFound       = "Balade non trouvée."
	msgListFailed     = "Erreur lors de la récupération des balades."
	msgGetFailed      = "Erreur lors de la récupération de la balade."
	msgSearchFailed   = "Erreur lors de la recherche des balades."
	msgBadArrondis    = "Numéro d'arrondissement invalide."
	msgCountFailed    = "Erreur lors du comptage des balades."
	msgSynthesFailed  = "Erreur lors de la récupération de la synthèse par arrondissement."
	msgCategoryFailed = "Erreur lors de la récupération des catégories."
)

// Characters 4-5 of a Paris postal code (750XX) carry the arrondissement.
const (
	arrondissementOffset = 3
	arrondissementLength = 2
)

var arrondissementPattern = regexp.MustCompile(`^[0-9]{2}$`)

// CountedBalades pairs a result list with a separately counted total.
type CountedBalades struct {
	Count   int64           `json:"count"`
	Balades []models.Balade `json:"balades"`
}

type QueryService struct {
	store store.Store
}

func NewQueryService(s store.Store) *QueryService {
	return &QueryService{store: s}
}

func storeFailure(op string, err error, message string) error {
	metrics.RecordStoreError(op)
	return apierrors.Store(err, message)
}

func (s *QueryService) ListAll(ctx context.Context) ([]models.Balade, error) {
	balades, err := s.store.Find(ctx, store.Filter{}, store.FindOptions{})
	if err != nil {
		return nil, storeFailure("list", err, msgListFailed)
	}
	return balades, nil
}

func (s *QueryService) GetByID(ctx context.Context, id string) (*models.Balade, error) {
	b, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, storeFailure("get", err, msgGetFailed)
	}
	return b, nil
}

// Search matches term against nom_poi or texte_intro, case-insensitively.
// The term is used as a pattern, not tokenized.
func (s *QueryService) Search(ctx context.Context, term string) ([]models.Balade, error) {
	f := store.AnyOf(
		store.IRegex(models.FieldNomPOI, term),
		store.IRegex(models.FieldTexteIntro, term),
	)
	balades, err := s.store.Find(ctx, f, store.FindOptions{})
	if err != nil {
		return nil, storeFailure("search", err, msgSearchFailed)
	}
	return balades, nil
}

func (s *QueryService) counted(ctx context.Context, op string, f store.Filter) (*CountedBalades, error) {
	balades, err := s.store.Find(ctx, f, store.FindOptions{})
	if err != nil {
		return nil, storeFailure(op, err, msgListFailed)
	}
	count, err := s.store.Count(ctx, f)
	if err != nil {
		return nil, storeFailure(op, err, msgListFailed)
	}
	return &CountedBalades{Count: count, Balades: balades}, nil
}

// WithWebsite returns balades that have a url_site.
func (s *QueryService) WithWebsite(ctx context.Context) (*CountedBalades, error) {
	return s.counted(ctx, "with_website", store.Where(store.NotNull(models.FieldURLSite)))
}

// KeywordRich returns balades with at least six keywords.
func (s *QueryService) KeywordRich(ctx context.Context) (*CountedBalades, error) {
	return s.counted(ctx, "keyword_rich", store.Where(store.Exists(models.FieldMotCle+".5")))
}

// PublishedIn returns balades whose date_saisie contains year, oldest first.
func (s *QueryService) PublishedIn(ctx context.Context, year string) ([]models.Balade, error) {
	f := store.Where(store.IRegex(models.FieldDateSaisie, year))
	balades, err := s.store.Find(ctx, f, store.FindOptions{SortAsc: models.FieldDateSaisie})
	if err != nil {
		return nil, storeFailure("published_in", err, msgListFailed)
	}
	return balades, nil
}

// CountByArrondissement counts balades whose postal code ends with num.
func (s *QueryService) CountByArrondissement(ctx context.Context, num string) (int64, error) {
	if !arrondissementPattern.MatchString(num) {
		return 0, apierrors.Validation(msgBadArrondis, "num="+num)
	}
	count, err := s.store.Count(ctx, store.Where(store.Regex(models.FieldCodePostal, num+"$")))
	if err != nil {
		return 0, storeFailure("count_arrondissement", err, msgCountFailed)
	}
	return count, nil
}

func (s *QueryService) SynthesisByArrondissement(ctx context.Context) ([]models.ArrondissementCount, error) {
	groups, err := s.store.CountBySubstring(ctx, models.FieldCodePostal, arrondissementOffset, arrondissementLength)
	if err != nil {
		return nil, storeFailure("synthesis", err, msgSynthesFailed)
	}
	return groups, nil
}

func (s *QueryService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Distinct(ctx, models.FieldCategorie)
	if err != nil {
		return nil, storeFailure("categories", err, msgCategoryFailed)
	}
	return categories, nil
}

// Ping reports whether the backing store is reachable.
func (s *QueryService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
