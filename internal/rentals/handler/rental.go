package handler

import (
	"net/http"

	"carrental/internal/rentals/service"
	httputil "carrental/pkg/http"
	"carrental/pkg/logger"
	"carrental/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RentalHandler struct {
	service service.RentalService
	log     *logger.Logger
}

func NewRentalHandler(service service.RentalService, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log,
	}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateRentalRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err, "Create")
		return
	}

	rental, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Create")
		return
	}

	if err := httputil.WriteCreated(w, "/api/v1/rentals/id/"+rental.ID, rental); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RentalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rental, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err, "GetByID")
		return
	}
	h.writeSuccess(w, rental, "GetByID")
}

func (h *RentalHandler) ListByCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err, "ListByCustomer")
		return
	}

	rentals, total, err := h.service.ListByCustomer(r.Context(), ps.ByName("customer_id"), limit, offset)
	if err != nil {
		h.writeError(w, err, "ListByCustomer")
		return
	}

	if err := httputil.WritePaginated(w, rentals, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByCustomer", "operation", "WritePaginated", "error", err)
	}
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rental, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err, "Cancel")
		return
	}
	h.writeSuccess(w, rental, "Cancel")
}

func (h *RentalHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RescheduleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err, "Reschedule")
		return
	}

	rental, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, err, "Reschedule")
		return
	}
	h.writeSuccess(w, rental, "Reschedule")
}

func (h *RentalHandler) Pay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err, "Pay")
		return
	}

	rental, err := h.service.Pay(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, err, "Pay")
		return
	}
	h.writeSuccess(w, rental, "Pay")
}

func (h *RentalHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rental, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err, "Approve")
		return
	}
	h.writeSuccess(w, rental, "Approve")
}

func (h *RentalHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rental, err := h.service.Submit(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err, "Submit")
		return
	}
	h.writeSuccess(w, rental, "Submit")
}

func (h *RentalHandler) RedeemableCash(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cash, err := h.service.RedeemableCash(r.Context(), ps.ByName("customer_id"))
	if err != nil {
		h.writeError(w, err, "RedeemableCash")
		return
	}
	h.writeSuccess(w, cash, "RedeemableCash")
}

func (h *RentalHandler) writeError(w http.ResponseWriter, err error, handler string) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RentalHandler) writeSuccess(w http.ResponseWriter, data any, handler string) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rentals", h.Create)
	router.GET("/api/v1/rentals/id/:id", h.GetByID)
	router.POST("/api/v1/rentals/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/rentals/id/:id/dates", h.Reschedule)
	router.POST("/api/v1/rentals/id/:id/payments", h.Pay)
	router.POST("/api/v1/rentals/id/:id/approve", h.Approve)
	router.POST("/api/v1/rentals/id/:id/submit", h.Submit)
	router.GET("/api/v1/customers/:customer_id/rentals", h.ListByCustomer)
	router.GET("/api/v1/customers/:customer_id/redeemable-cash", h.RedeemableCash)
}
