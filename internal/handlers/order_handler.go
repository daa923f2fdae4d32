package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medlab-api/internal/middleware"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
)

// CreateOrder books a test. Orders placed with a patient token are linked
// to that patient.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !bind(c, &req) {
		return
	}

	order, err := h.Orders.CreateOrder(c.Request.Context(), req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order, "Order placed successfully")
}

// ListOrders returns the caller's orders, or every order for a laboratory.
func (h *Handler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	orders, meta, err := h.Orders.ListOrders(c.Request.Context(), filter, pagination.FromContext(c), middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, orders, meta)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), id, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}
