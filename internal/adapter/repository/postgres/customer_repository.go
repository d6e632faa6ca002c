package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	logger.Info("customer repository create", logger.Fields{
		"customerId":   customer.CustomerID,
		"customerType": string(customer.Type),
	})

	const query = `
INSERT INTO customers (id, name, customer_type, created_at)
VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query,
		customer.CustomerID,
		customer.Name,
		string(customer.Type),
		customer.CreatedAt,
	); err != nil {
		logger.Error("customer repository create failed", err, logger.Fields{
			"customerId": customer.CustomerID,
		})
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.Customer, error) {
	const query = `
SELECT id, name, customer_type, created_at
FROM customers
WHERE id = $1`

	var customer domain.Customer
	var customerType string
	if err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&customer.CustomerID,
		&customer.Name,
		&customerType,
		&customer.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		logger.Error("customer repository get failed", err, logger.Fields{
			"customerId": customerID,
		})
		return domain.Customer{}, fmt.Errorf("get customer by id: %w", err)
	}

	customer.Type = domain.CustomerType(customerType)
	return customer, nil
}
