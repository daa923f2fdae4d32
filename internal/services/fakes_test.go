package services

import (
	"github.com/stretchr/testify/mock"

	"github.com/harentsoaR/medlab-api/internal/models"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderPlaced(o *models.Order) {
	m.Called(o)
}
