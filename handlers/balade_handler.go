package handlers

import (
	"net/http"

	"balades-api/middleware"
	"balades-api/services"

	"github.com/gorilla/mux"
)

type BaladeHandler struct {
	queries *services.QueryService
}

func NewBaladeHandler(queries *services.QueryService) *BaladeHandler {
	return &BaladeHandler{queries: queries}
}

func (h *BaladeHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, "Salut")
}

func (h *BaladeHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.queries.Ping(r.Context()); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BaladeHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	balades, err := h.queries.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, balades)
}

func (h *BaladeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.queries.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

func (h *BaladeHandler) Search(w http.ResponseWriter, r *http.Request) {
	balades, err := h.queries.Search(r.Context(), mux.Vars(r)["search"])
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, balades)
}

func (h *BaladeHandler) WithWebsite(w http.ResponseWriter, r *http.Request) {
	res, err := h.queries.WithWebsite(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *BaladeHandler) KeywordRich(w http.ResponseWriter, r *http.Request) {
	res, err := h.queries.KeywordRich(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *BaladeHandler) PublishedIn(w http.ResponseWriter, r *http.Request) {
	balades, err := h.queries.PublishedIn(r.Context(), mux.Vars(r)["annee"])
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, balades)
}

func (h *BaladeHandler) CountByArrondissement(w http.ResponseWriter, r *http.Request) {
	count, err := h.queries.CountByArrondissement(r.Context(), mux.Vars(r)["num"])
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int64{"count": count})
}

func (h *BaladeHandler) Synthesis(w http.ResponseWriter, r *http.Request) {
	groups, err := h.queries.SynthesisByArrondissement(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, groups)
}

func (h *BaladeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queries.Categories(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{"categories": categories})
}
