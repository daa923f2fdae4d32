package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
)

// RegisterPatient creates a phone-keyed patient account and returns a token.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req services.PatientRegisterInput
	if !bind(c, &req) {
		return
	}

	auth, err := h.Patients.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, auth, "Registration successful")
}

// LoginPatient issues a fresh token for an existing phone number.
func (h *Handler) LoginPatient(c *gin.Context) {
	var req services.PatientLoginInput
	if !bind(c, &req) {
		return
	}

	auth, err := h.Patients.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, auth)
}

// RegisterLab creates a laboratory account and returns a lab-role token.
func (h *Handler) RegisterLab(c *gin.Context) {
	var req services.LabRegisterInput
	if !bind(c, &req) {
		return
	}

	auth, err := h.Labs.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, auth, "Laboratory registered successfully")
}

func (h *Handler) LoginLab(c *gin.Context) {
	var req services.LabLoginInput
	if !bind(c, &req) {
		return
	}

	auth, err := h.Labs.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, auth)
}
