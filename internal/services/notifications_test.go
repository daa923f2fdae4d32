package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medlab-api/internal/models"
)

func TestNewOrderNotifier_NoKey(t *testing.T) {
	_, ok := NewOrderNotifier("").(NopNotifier)
	assert.True(t, ok)

	_, ok = NewOrderNotifier("key").(*SMSNotifier)
	assert.True(t, ok)
}

func TestSMSNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	n := &SMSNotifier{apiKey: "key", endpoint: srv.URL, client: srv.Client()}
	require.NoError(t, n.send(context.Background(), "9876543210", "hello"))
	assert.Equal(t, "9876543210", got["phone"])
	assert.Equal(t, "hello", got["message"])
	assert.Equal(t, "key", got["key"])
}

func TestSMSNotifier_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"Out of quota"}`))
	}))
	defer srv.Close()

	n := &SMSNotifier{apiKey: "key", endpoint: srv.URL, client: srv.Client()}
	err := n.send(context.Background(), "9876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Out of quota")
}

func TestOrderConfirmationText(t *testing.T) {
	o := &models.Order{
		OrderNumber: "ORD-123456-0001",
		Test:        models.TestSnapshot{Name: "CBC"},
		Patient:     models.PatientDetails{FullName: "Jane Doe"},
		Appointment: models.Appointment{
			PreferredDate: time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC),
			PreferredTime: "09:00",
		},
	}
	assert.Equal(t, "Order ORD-123456-0001 confirmed: CBC for Jane Doe on Mar 4 (09:00).", orderConfirmationText(o))
}
