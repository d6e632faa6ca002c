package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

const daysPerYear = 365

// InterestCalculator computes accrued interest over a date range as a
// pure function of (balance, rate, period). Applying the result to an
// account is a separate, explicit ledger posting.
type InterestCalculator interface {
	Calculate(principal domain.Money, rate decimal.Decimal, from, to time.Time) (domain.Money, error)
	CompoundingFrequency() int
	AppliesTo(account domain.Account) bool
}

// SimpleInterestCalculator implements principal * rate * days / 365 with
// a single half-up rounding to 2 fraction digits. Used for checking
// accounts.
type SimpleInterestCalculator struct{}

func (SimpleInterestCalculator) Calculate(principal domain.Money, rate decimal.Decimal, from, to time.Time) (domain.Money, error) {
	days, err := daysBetween(from, to)
	if err != nil {
		return domain.Money{}, err
	}

	interest := principal.Amount.
		Mul(rate).
		Mul(decimal.NewFromInt(days)).
		Div(decimal.NewFromInt(daysPerYear))

	return domain.NewMoney(interest, principal.Currency), nil
}

func (SimpleInterestCalculator) CompoundingFrequency() int { return 1 }

func (SimpleInterestCalculator) AppliesTo(account domain.Account) bool {
	return account.Type == domain.AccountTypeChecking
}

// CompoundInterestCalculator implements P * [(1 + r/n)^(n*t) - 1] with
// t = days/365 and monthly compounding by default. Intermediate values
// keep full division precision; only the final result is rounded, so
// rounding error does not compound across periods.
type CompoundInterestCalculator struct {
	PeriodsPerYear int
}

func NewCompoundInterestCalculator() CompoundInterestCalculator {
	return CompoundInterestCalculator{PeriodsPerYear: 12}
}

func (c CompoundInterestCalculator) Calculate(principal domain.Money, rate decimal.Decimal, from, to time.Time) (domain.Money, error) {
	days, err := daysBetween(from, to)
	if err != nil {
		return domain.Money{}, err
	}

	periodsPerYear := decimal.NewFromInt(int64(c.CompoundingFrequency()))
	ratePerPeriod := rate.Div(periodsPerYear)
	timeInYears := decimal.NewFromInt(days).Div(decimal.NewFromInt(daysPerYear))
	periods := timeInYears.Mul(periodsPerYear).IntPart()

	growth := decimal.NewFromInt(1)
	base := decimal.NewFromInt(1).Add(ratePerPeriod)
	for i := int64(0); i < periods; i++ {
		growth = growth.Mul(base)
	}

	interest := principal.Amount.Mul(growth.Sub(decimal.NewFromInt(1)))
	return domain.NewMoney(interest, principal.Currency), nil
}

func (c CompoundInterestCalculator) CompoundingFrequency() int {
	if c.PeriodsPerYear <= 0 {
		return 12
	}
	return c.PeriodsPerYear
}

func (CompoundInterestCalculator) AppliesTo(account domain.Account) bool {
	return account.Type == domain.AccountTypeSavings
}

// CalculatorFor selects the strategy by account variant.
func CalculatorFor(account domain.Account) InterestCalculator {
	if account.Type == domain.AccountTypeSavings {
		return NewCompoundInterestCalculator()
	}
	return SimpleInterestCalculator{}
}

func daysBetween(from, to time.Time) (int64, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("interest period end %s precedes start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return int64(to.Sub(from) / (24 * time.Hour)), nil
}
