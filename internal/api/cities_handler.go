// internal/api/cities_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/cities"
	"github.com/synkteam/municipath/internal/domain/models"
)

// CityHandler handles HTTP requests for cities.
type CityHandler struct {
	cities *cities.Engine
}

// NewCityHandler creates a new city handler.
func NewCityHandler(engine *cities.Engine) *CityHandler {
	return &CityHandler{cities: engine}
}

// Routes returns the routes for cities.
func (h *CityHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateCity)
	r.Get("/", h.ListCities)
	r.Get("/search", h.SearchCities)
	r.Get("/{cityID}", h.GetCity)
	r.Put("/{cityID}", h.UpdateCity)
	r.Delete("/{cityID}", h.DeleteCity)

	return r
}

// CityRequest is the request body for creating or updating a city.
type CityRequest struct {
	Name       string          `json:"name"`
	PostalCode int             `json:"postal_code"`
	Curator    string          `json:"curator"`
	Pos        models.Position `json:"pos"`
}

// CreateCity registers a new city.
func (h *CityHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req CityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	city, err := h.cities.Create(r.Context(), actor(r), req.Name, req.PostalCode, req.Curator, req.Pos)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, city)
}

// GetCity retrieves a city by ID.
func (h *CityHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.cities.Get(r.Context(), chi.URLParam(r, "cityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, city)
}

// ListCities lists all registered cities.
func (h *CityHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.cities.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// SearchCities finds cities by case-insensitive name prefix.
func (h *CityHandler) SearchCities(w http.ResponseWriter, r *http.Request) {
	list, err := h.cities.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// UpdateCity edits a city's details in place.
func (h *CityHandler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	var req CityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	city, err := h.cities.Update(r.Context(), actor(r), chi.URLParam(r, "cityID"), req.Name, req.Curator, req.Pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, city)
}

// DeleteCity tears down a city and everything under it.
func (h *CityHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	if err := h.cities.Delete(r.Context(), actor(r), chi.URLParam(r, "cityID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
