package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a registered vehicle record. Compliance dates are stored as
// ISO-8601 date strings exactly as entered; unparseable values are treated
// as unknown rather than expired.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleNo       string             `bson:"vehicle_no" json:"vehicleNo" validate:"required"`
	ModelNo         string             `bson:"model_no,omitempty" json:"modelNo,omitempty"`
	RFIDTag         string             `bson:"rfid_tag" json:"rfidTag" validate:"required"`
	OwnerName       string             `bson:"owner_name" json:"ownerName"`
	MobileNumber    string             `bson:"mobile_number" json:"mobileNumber"`
	InsuranceExpiry string             `bson:"insurance_expiry" json:"insuranceExpiry"`
	PUCExpiry       string             `bson:"puc_expiry" json:"pucExpiry"`
	AccessToken     string             `bson:"access_token,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}
