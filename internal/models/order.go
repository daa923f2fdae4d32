package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCOD       PaymentStatus = "COD"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Order is a booking of one test. The test, patient, appointment and
// address are copies taken at booking time; later catalog edits do not
// change them.
type Order struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber string              `bson:"orderNumber" json:"orderNumber"` // unique, set once
	PatientID   *primitive.ObjectID `bson:"patientId,omitempty" json:"patientId,omitempty"`
	Test        TestSnapshot        `bson:"test" json:"test"`
	Patient     PatientDetails      `bson:"patient" json:"patient"`
	Payment     PaymentStatus       `bson:"payment" json:"payment" binding:"omitempty,oneof=pending COD completed cancelled"`
	Appointment Appointment         `bson:"appointment" json:"appointment"`
	Address     Address             `bson:"address" json:"address"`
	Status      OrderStatus         `bson:"status" json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type TestSnapshot struct {
	Name           string             `bson:"name" json:"name" binding:"required,max=100"`
	CategoryID     primitive.ObjectID `bson:"categoryId" json:"categoryId" binding:"required"`
	Cost           Amount             `bson:"cost" json:"cost" binding:"gte=0"`
	Description    string             `bson:"description" json:"description" binding:"max=500"`
	Preparation    string             `bson:"preparation" json:"preparation" binding:"max=500"`
	TurnaroundTime string             `bson:"turnaroundTime" json:"turnaroundTime" binding:"max=50"`
	Specialist     string             `bson:"specialist" json:"specialist" binding:"max=100"`
	WhyToTake      string             `bson:"whyToTake" json:"whyToTake" binding:"max=500"`
}

type PatientDetails struct {
	FullName string `bson:"fullName" json:"fullName" binding:"required,max=100"`
	Email    string `bson:"email" json:"email" binding:"required,email"`
	Phone    string `bson:"phone" json:"phone" binding:"required"`
	Gender   string `bson:"gender" json:"gender" binding:"required,oneof=male female other prefer-not-to-say"`
}

type Appointment struct {
	PreferredDate time.Time `bson:"preferredDate" json:"preferredDate" binding:"required,notpast"`
	PreferredTime string    `bson:"preferredTime" json:"preferredTime" binding:"required"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty" binding:"max=500"`
}

type Address struct {
	Street  string `bson:"street" json:"street" binding:"required"`
	City    string `bson:"city" json:"city" binding:"required"`
	State   string `bson:"state" json:"state" binding:"required"`
	Zip     string `bson:"zip" json:"zip" binding:"required"`
	Country string `bson:"country" json:"country" binding:"required"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentCOD, PaymentCompleted, PaymentCancelled:
		return true
	}
	return false
}

// OrderFilter narrows an order listing. Zero fields do not filter.
type OrderFilter struct {
	PatientID *primitive.ObjectID
	Status    OrderStatus
}

// OrderStatusUpdate carries the mutable lifecycle fields of an order.
type OrderStatusUpdate struct {
	Status  OrderStatus   `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
	Payment PaymentStatus `json:"payment" binding:"omitempty,oneof=pending COD completed cancelled"`
}
