package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fine statuses. A fine only ever moves UNPAID -> PAID, never back.
const (
	FineStatusUnpaid = "UNPAID"
	FineStatusPaid   = "PAID"
)

// Violation is one detected compliance breach within a fine.
type Violation struct {
	Type       string `bson:"type" json:"type"`
	ExpiredOn  string `bson:"expired_on,omitempty" json:"expiredOn,omitempty"`
	FineAmount int    `bson:"fine_amount" json:"fineAmount"`
}

// Fine is a single issuance event. Owner and contact fields are a snapshot
// of the vehicle at issuance time; later vehicle edits do not touch them.
// Token is the vehicle's access token copied at issuance and is the join
// key for settlement and owner self-service lookup.
type Fine struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleNo     string             `bson:"vehicle_no" json:"vehicleNo"`
	RFIDTag       string             `bson:"rfid_tag" json:"rfidTag"`
	OwnerName     string             `bson:"owner_name" json:"ownerName"`
	MobileNumber  string             `bson:"mobile_number" json:"mobileNumber"`
	Violations    []Violation        `bson:"violations" json:"violations"`
	TotalAmount   int                `bson:"total_amount" json:"totalAmount"`
	Status        string             `bson:"status" json:"status"`
	Token         string             `bson:"token" json:"token"`
	IssuedAt      time.Time          `bson:"issued_at" json:"issuedAt"`
	PaidAt        *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	PaymentMethod string             `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
}

// Total returns the stored total, falling back to summing the violation
// breakdown for legacy records written before total_amount existed.
func (f *Fine) Total() int {
	if f.TotalAmount > 0 {
		return f.TotalAmount
	}
	total := 0
	for _, v := range f.Violations {
		total += v.FineAmount
	}
	return total
}
