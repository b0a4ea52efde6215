package handlers

import (
	"net/http"
	"strconv"

	"balades-api/middleware"
	"balades-api/models"
	"balades-api/services"
	"balades-api/utils/errors"
)

const defaultRadius = 1000 // meters

type NearbyHandler struct {
	geoService *services.GeoService
}

type NearbyResponse struct {
	Count   int             `json:"count"`
	Balades []models.Balade `json:"balades"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Radius  float64         `json:"radius"`
}

func NewNearbyHandler(geoService *services.GeoService) *NearbyHandler {
	return &NearbyHandler{geoService: geoService}
}

func (h *NearbyHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, r, errors.ErrInvalidInput)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		middleware.WriteError(w, r, errors.ErrInvalidInput)
		return
	}
	radius := float64(defaultRadius)
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, r, errors.ErrInvalidInput)
			return
		}
	}

	balades, err := h.geoService.Nearby(r.Context(), lat, lon, radius, q.Get("categorie"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, NearbyResponse{
		Count:   len(balades),
		Balades: balades,
		Lat:     lat,
		Lon:     lon,
		Radius:  radius,
	})
}
