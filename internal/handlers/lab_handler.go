package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
)

// GetLabProfile returns the authenticated laboratory.
func (h *Handler) GetLabProfile(c *gin.Context) {
	_, labID, ok := principal(c)
	if !ok {
		return
	}

	lab, err := h.Labs.Profile(c.Request.Context(), labID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lab)
}

// UpdateLabProfile changes name, email or password of the authenticated
// laboratory.
func (h *Handler) UpdateLabProfile(c *gin.Context) {
	_, labID, ok := principal(c)
	if !ok {
		return
	}
	var req services.LabUpdateInput
	if !bind(c, &req) {
		return
	}

	lab, err := h.Labs.Update(c.Request.Context(), labID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lab)
}

// ListLabOrders pages through every order, optionally filtered by ?status=.
func (h *Handler) ListLabOrders(c *gin.Context) {
	claims, _, ok := principal(c)
	if !ok {
		return
	}

	filter := models.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	orders, meta, err := h.Orders.ListOrders(c.Request.Context(), filter, pagination.FromContext(c), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, orders, meta)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req models.OrderStatusUpdate
	if !bind(c, &req) {
		return
	}

	order, err := h.Orders.UpdateOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}
