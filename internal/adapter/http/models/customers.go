package models

import (
	"errors"
	"strings"
)

type CreateCustomerRequest struct {
	Name         string `json:"name"`
	CustomerType string `json:"customerType"`
}

func (r CreateCustomerRequest) Validate() error {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	switch strings.ToUpper(strings.TrimSpace(r.CustomerType)) {
	case "BASIC", "PREMIUM", "VIP", "BUSINESS":
	default:
		errs = append(errs, "customerType must be one of BASIC, PREMIUM, VIP, BUSINESS")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type CustomerResponse struct {
	CustomerID   string `json:"customerId"`
	Name         string `json:"name"`
	CustomerType string `json:"customerType"`
	CreatedAt    string `json:"createdAt"`
}
