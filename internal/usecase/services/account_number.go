package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

const accountNumberPrefix = "ACC"
const accountNumberDigits = 10
const defaultMaxAttempts = 100

var accountNumberPattern = regexp.MustCompile(`^ACC-\d{10}$`)

var accountNumberSpace = big.NewInt(10_000_000_000)

// AccountNumberGenerator produces collision-free ACC-XXXXXXXXXX numbers,
// checking candidates against the account repository with a bounded
// number of attempts.
type AccountNumberGenerator struct {
	accounts    domain.AccountRepository
	maxAttempts int
}

func NewAccountNumberGenerator(accounts domain.AccountRepository) *AccountNumberGenerator {
	return &AccountNumberGenerator{
		accounts:    accounts,
		maxAttempts: defaultMaxAttempts,
	}
}

func (g *AccountNumberGenerator) Next(ctx context.Context, accountType domain.AccountType) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		candidate, err := randomAccountNumber()
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}

		exists, err := g.accounts.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check account number uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}

		logger.Info("account number generator collision", logger.Fields{
			"attempt":     attempt,
			"accountType": string(accountType),
		})
	}

	return "", domain.ErrGenerationExhausted
}

func IsValidAccountNumber(accountNumber string) bool {
	return accountNumberPattern.MatchString(accountNumber)
}

func randomAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%010d", accountNumberPrefix, n), nil
}
