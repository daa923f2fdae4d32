package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medlab-api/internal/apperr"
	"github.com/harentsoaR/medlab-api/internal/models"
	"github.com/harentsoaR/medlab-api/internal/pagination"
	"github.com/harentsoaR/medlab-api/internal/utils"
	"github.com/harentsoaR/medlab-api/internal/validation"
)

const maxOrderNumberAttempts = 3

type CreateOrderInput struct {
	Test        models.TestSnapshot   `json:"test"`
	Patient     models.PatientDetails `json:"patient"`
	Appointment models.Appointment    `json:"appointment"`
	Address     models.Address        `json:"address"`
	Payment     models.PaymentStatus  `json:"payment" binding:"omitempty,oneof=pending COD completed cancelled"`
}

// OrderNotifier is told about every newly placed order. Implementations
// must not block.
type OrderNotifier interface {
	OrderPlaced(o *models.Order)
}

type OrderService struct {
	orders   OrderRepository
	notifier OrderNotifier
	now      func() time.Time
}

func NewOrderService(orders OrderRepository, notifier OrderNotifier) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{orders: orders, notifier: notifier, now: time.Now}
}

// FormatOrderNumber renders ORD-<last 6 digits of epoch ms>-<sequence>.
func FormatOrderNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%06d-%04d", at.UnixMilli()%1_000_000, seq)
}

// assignOrderNumber numbers o unless it already carries a number.
func assignOrderNumber(o *models.Order, at time.Time, seq int64) {
	if o.OrderNumber != "" {
		return
	}
	o.OrderNumber = FormatOrderNumber(at, seq)
}

// CreateOrder validates in and persists a new pending order. A collision on
// the order number is retried with the next sequence a bounded number of
// times before the conflict is returned.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput, by *utils.Claims) (*models.Order, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	payment := in.Payment
	if payment == "" {
		payment = models.PaymentPending
	}
	in.Test.Cost = in.Test.Cost.Rounded()

	o := &models.Order{
		ID:          primitive.NewObjectID(),
		Test:        in.Test,
		Patient:     in.Patient,
		Payment:     payment,
		Appointment: in.Appointment,
		Address:     in.Address,
		Status:      models.OrderPending,
	}
	if by != nil && by.Role != utils.RoleLab {
		o.PatientID = principalID(by)
	}

	var err error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		var count int64
		count, err = s.orders.Count(ctx)
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		o.CreatedAt, o.UpdatedAt = now, now
		o.OrderNumber = ""
		assignOrderNumber(o, now, count+1+int64(attempt))

		err = s.orders.Create(ctx, o)
		if err == nil {
			log.Info().Str("orderId", o.ID.Hex()).Str("orderNumber", o.OrderNumber).Msg("order created")
			s.notifier.OrderPlaced(o)
			return o, nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		log.Warn().Str("orderNumber", o.OrderNumber).Int("attempt", attempt+1).Msg("order number taken, retrying")
	}
	return nil, err
}

// GetOrder returns the order with id. Patients only see their own orders;
// anyone else's order is reported as missing.
func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID, by *utils.Claims) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if by != nil && by.Role != utils.RoleLab {
		owner := principalID(by)
		if owner == nil || o.PatientID == nil || *o.PatientID != *owner {
			return nil, apperr.NotFound("Order not found")
		}
	}
	return o, nil
}

// ListOrders pages through orders newest first. Patients are always
// restricted to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, f models.OrderFilter, p pagination.Params, by *utils.Claims) ([]models.Order, pagination.Meta, error) {
	if f.Status != "" && !models.ValidOrderStatus(f.Status) {
		return nil, pagination.Meta{}, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "status", Message: "must be one of: pending confirmed completed cancelled"})
	}
	if by != nil && by.Role != utils.RoleLab {
		owner := principalID(by)
		if owner == nil {
			return []models.Order{}, p.Meta(0), nil
		}
		f.PatientID = owner
	}
	orders, total, err := s.orders.List(ctx, f, p)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return orders, p.Meta(total), nil
}

// UpdateOrderStatus changes the status and optionally the payment state.
// The order number is left untouched.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, u models.OrderStatusUpdate) (*models.Order, error) {
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, id, u, s.now().UTC())
	if err != nil {
		return nil, err
	}
	log.Info().Str("orderId", id.Hex()).Str("status", string(o.Status)).Msg("order status updated")
	return o, nil
}
