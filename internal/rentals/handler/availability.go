package handler

import (
	"net/http"

	"carrental/internal/rentals/service"
	httputil "carrental/pkg/http"
	"carrental/pkg/logger"
	"carrental/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// AvailabilityHandler serves the read-only storefront endpoints: quotes, free cars and location pickers.
type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RentalWindowRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err, "Quote")
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Quote")
		return
	}
	h.writeSuccess(w, quote, "Quote")
}

func (h *AvailabilityHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err, "Availability")
		return
	}

	cars, err := h.service.Availability(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Availability")
		return
	}
	h.writeSuccess(w, cars, "Availability")
}

func (h *AvailabilityHandler) ListStates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	states, err := h.service.ListStates(r.Context())
	if err != nil {
		h.writeError(w, err, "ListStates")
		return
	}
	h.writeSuccess(w, states, "ListStates")
}

func (h *AvailabilityHandler) ListCities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cities, err := h.service.ListCities(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		h.writeError(w, err, "ListCities")
		return
	}
	h.writeSuccess(w, cities, "ListCities")
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, err error, handler string) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) writeSuccess(w http.ResponseWriter, data any, handler string) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rentals/quote", h.Quote)
	router.POST("/api/v1/rentals/availability", h.Availability)
	router.GET("/api/v1/locations/states", h.ListStates)
	router.GET("/api/v1/locations/cities", h.ListCities)
}
