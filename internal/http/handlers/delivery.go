package handlers

import (
	"net/http"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Assign handles POST /deliveries/{id}/assign.
// @Summary Назначить курьера
// @Tags deliveries
// @Produce json
// @Success 200 {object} assignDeliveryResponse
// @Failure 404 {object} ErrorResponse "delivery not found"
// @Failure 409 {object} ErrorResponse "no available couriers or wrong status"
// @Router /deliveries/{id}/assign [post]
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	res, _, err := h.usecase.AssignCourier(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignResultToResponse(res))
}

// UpdateStatus handles POST /deliveries/{id}/status.
// @Summary Сменить статус доставки
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body updateStatusRequest true "target status and acting courier"
// @Success 200 {object} transitionResponse
// @Failure 403 {object} ErrorResponse "courier mismatch"
// @Failure 409 {object} ErrorResponse "transition not allowed"
// @Router /deliveries/{id}/status [post]
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	events, err := h.usecase.UpdateStatus(r.Context(), id, req.Status, req.CourierID)
	h.respondTransition(w, r, id, events, err)
}

// Simulate handles POST /deliveries/{id}/simulate.
func (h *DeliveryHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	events, err := h.usecase.SimulateProgress(r.Context(), id)
	h.respondTransition(w, r, id, events, err)
}

func (h *DeliveryHandler) respondTransition(w http.ResponseWriter, r *http.Request, id int64, events []domain.Event, err error) {
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, transitionResponse{
		Delivery: deliveryToResponse(d),
		Events:   eventTypes(events),
	})
}

func (h *DeliveryHandler) deliveryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
