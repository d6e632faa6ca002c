package domain

import "context"

type AccountRepository interface {
	GetByID(ctx context.Context, accountID string) (Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (Account, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Account, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer Customer) (Customer, error)
	GetByCustomerID(ctx context.Context, customerID string) (Customer, error)
}
