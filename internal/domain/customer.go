package domain

import "time"

type CustomerType string

const (
	CustomerTypeBasic    CustomerType = "BASIC"
	CustomerTypePremium  CustomerType = "PREMIUM"
	CustomerTypeVIP      CustomerType = "VIP"
	CustomerTypeBusiness CustomerType = "BUSINESS"
)

type Customer struct {
	CustomerID string
	Name       string
	Type       CustomerType
	CreatedAt  time.Time
}
