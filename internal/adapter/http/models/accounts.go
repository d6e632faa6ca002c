package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var accountNumberPattern = regexp.MustCompile(`^ACC-\d{10}$`)

func validateAccountNumber(accountNumber string, field string, errs *[]string) {
	if !accountNumberPattern.MatchString(strings.TrimSpace(accountNumber)) {
		*errs = append(*errs, field+" must match ACC- followed by 10 digits")
	}
}

func validateAmount(amount string, errs *[]string) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		*errs = append(*errs, "amount is required")
		return
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		*errs = append(*errs, "amount must be numeric")
		return
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		*errs = append(*errs, "amount must be greater than zero")
	}
}

type CreateAccountRequest struct {
	CustomerID     string `json:"customerId"`
	AccountType    string `json:"accountType"`
	Currency       string `json:"currency"`
	InitialDeposit string `json:"initialDeposit"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, "customerId is required")
	}

	accountType := strings.ToUpper(strings.TrimSpace(r.AccountType))
	if accountType != "CHECKING" && accountType != "SAVINGS" {
		errs = append(errs, "accountType must be CHECKING or SAVINGS")
	}

	if strings.TrimSpace(r.Currency) == "" {
		errs = append(errs, "currency is required")
	}

	validateAmount(r.InitialDeposit, &errs)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	AccountID           string `json:"accountId"`
	AccountNumber       string `json:"accountNumber"`
	CustomerID          string `json:"customerId"`
	AccountType         string `json:"accountType"`
	Currency            string `json:"currency"`
	Balance             string `json:"balance"`
	Status              string `json:"status"`
	OpenDate            string `json:"openDate"`
	LastTransactionDate string `json:"lastTransactionDate,omitempty"`

	OverdraftLimit        string `json:"overdraftLimit,omitempty"`
	MonthlyFee            string `json:"monthlyFee,omitempty"`
	InterestRate          string `json:"interestRate,omitempty"`
	MinimumBalance        string `json:"minimumBalance,omitempty"`
	WithdrawalLimit       int    `json:"withdrawalLimit,omitempty"`
	WithdrawalsThisPeriod int    `json:"withdrawalsThisPeriod,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type BalanceResponse struct {
	AccountNumber string `json:"accountNumber"`
	Currency      string `json:"currency"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	AsOf          string `json:"asOf"`
}

type AccountStatusRequest struct {
	AccountNumber string `json:"accountNumber"`
	Reason        string `json:"reason"`
}

func (r AccountStatusRequest) Validate() error {
	var errs []string
	validateAccountNumber(r.AccountNumber, "accountNumber", &errs)
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type InterestQuoteRequest struct {
	AccountNumber string `json:"accountNumber"`
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
}

func (r InterestQuoteRequest) Validate() error {
	var errs []string
	validateAccountNumber(r.AccountNumber, "accountNumber", &errs)
	from, errFrom := time.Parse(time.DateOnly, strings.TrimSpace(r.FromDate))
	if errFrom != nil {
		errs = append(errs, "fromDate must be YYYY-MM-DD")
	}
	to, errTo := time.Parse(time.DateOnly, strings.TrimSpace(r.ToDate))
	if errTo != nil {
		errs = append(errs, "toDate must be YYYY-MM-DD")
	}
	if errFrom == nil && errTo == nil && to.Before(from) {
		errs = append(errs, "toDate cannot precede fromDate")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r InterestQuoteRequest) Period() (time.Time, time.Time) {
	from, _ := time.Parse(time.DateOnly, strings.TrimSpace(r.FromDate))
	to, _ := time.Parse(time.DateOnly, strings.TrimSpace(r.ToDate))
	return from, to
}

type InterestQuoteResponse struct {
	AccountNumber        string `json:"accountNumber"`
	AccountType          string `json:"accountType"`
	Principal            string `json:"principal"`
	AnnualRate           string `json:"annualRate"`
	CompoundingFrequency int    `json:"compoundingFrequency"`
	FromDate             string `json:"fromDate"`
	ToDate               string `json:"toDate"`
	Interest             string `json:"interest"`
}
