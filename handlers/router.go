package handlers

import (
	"net/http"

	"balades-api/middleware"
	"balades-api/services"
	"balades-api/utils/errors"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries what NewRouter wires. Geo may be nil, in which case
// /proximite is not registered.
type RouterConfig struct {
	Queries        *services.QueryService
	Mutations      *services.MutationService
	Geo            *services.GeoService
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *mux.Router {
	baladeHandler := NewBaladeHandler(cfg.Queries)
	mutationHandler := NewMutationHandler(cfg.Mutations)

	r := mux.NewRouter()
	r.NotFoundHandler = middleware.RequestLogger()(errorHandler(errors.ErrRouteNotFound))
	r.MethodNotAllowedHandler = middleware.RequestLogger()(errorHandler(errors.ErrMethodNotAllowed))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	get := []string{http.MethodGet, http.MethodOptions}

	r.HandleFunc("/", baladeHandler.Root).Methods(get...)
	r.HandleFunc("/health", baladeHandler.Health).Methods(get...)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Queries
	r.HandleFunc("/all", baladeHandler.ListAll).Methods(get...)
	r.HandleFunc("/id/{id}", baladeHandler.GetByID).Methods(get...)
	r.HandleFunc("/search/{search}", baladeHandler.Search).Methods(get...)
	r.HandleFunc("/site-internet", baladeHandler.WithWebsite).Methods(get...)
	r.HandleFunc("/mot-cle", baladeHandler.KeywordRich).Methods(get...)
	r.HandleFunc("/publie/{annee}", baladeHandler.PublishedIn).Methods(get...)
	r.HandleFunc("/arrondissement/{num}", baladeHandler.CountByArrondissement).Methods(get...)
	r.HandleFunc("/synthese", baladeHandler.Synthesis).Methods(get...)
	r.HandleFunc("/categories", baladeHandler.Categories).Methods(get...)

	// Mutations
	r.HandleFunc("/add", mutationHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/add-mot-cle/{id}", mutationHandler.AppendKeyword).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/update-one/{id}", mutationHandler.UpdateOne).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/update-many/{search}", mutationHandler.UpdateMany).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/delete/{id}", mutationHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)

	if cfg.Geo != nil {
		nearbyHandler := NewNearbyHandler(cfg.Geo)
		r.HandleFunc("/proximite", nearbyHandler.GetNearby).Methods(get...)
	}

	return r
}

func errorHandler(err *errors.APIError) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, err)
	})
}
