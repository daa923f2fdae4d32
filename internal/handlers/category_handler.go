package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medlab-api/internal/middleware"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
)

// ListCategories supports ?search=, ?page= and ?limit=.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, meta, err := h.Catalog.ListCategories(c.Request.Context(), c.Query("search"), pagination.FromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, categories, meta)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if !bind(c, &req) {
		return
	}

	category, err := h.Catalog.CreateCategory(c.Request.Context(), req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category, "Category created successfully")
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Category deleted successfully")
}

// ListTests returns the tests of one category in insertion order.
func (h *Handler) ListTests(c *gin.Context) {
	categoryID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	tests, err := h.Catalog.ListTests(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tests)
}

func (h *Handler) CreateTest(c *gin.Context) {
	categoryID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TestInput
	if !bind(c, &req) {
		return
	}

	test, err := h.Catalog.AddTest(c.Request.Context(), categoryID, req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, test, "Test added successfully")
}

func (h *Handler) DeleteTest(c *gin.Context) {
	categoryID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	testID, ok := objectIDParam(c, "testId")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteTest(c.Request.Context(), categoryID, testID, middleware.Claims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Test deleted successfully")
}
