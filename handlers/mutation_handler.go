package handlers

import (
	"net/http"

	"balades-api/middleware"
	"balades-api/services"

	"github.com/gorilla/mux"
)

type MutationHandler struct {
	mutations *services.MutationService
}

func NewMutationHandler(mutations *services.MutationService) *MutationHandler {
	return &MutationHandler{mutations: mutations}
}

func (h *MutationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateBaladeInput
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	b, err := h.mutations.Create(r.Context(), &input)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, b)
}

func (h *MutationHandler) AppendKeyword(w http.ResponseWriter, r *http.Request) {
	var input services.AppendKeywordInput
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	b, err := h.mutations.AppendKeyword(r.Context(), mux.Vars(r)["id"], &input)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

func (h *MutationHandler) UpdateOne(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateBaladeInput
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	b, err := h.mutations.UpdateOne(r.Context(), mux.Vars(r)["id"], &input)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

func (h *MutationHandler) UpdateMany(w http.ResponseWriter, r *http.Request) {
	var input services.RenameInput
	if err := decodeBody(r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if _, err := h.mutations.UpdateMany(r.Context(), mux.Vars(r)["search"], &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": services.MsgRenamed})
}

func (h *MutationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.mutations.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": services.MsgDeleted})
}
