package services

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

type stubAccountRepo struct {
	domain.AccountRepository
	taken map[string]bool
}

func (s *stubAccountRepo) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	return s.taken[accountNumber], nil
}

type saturatedAccountRepo struct {
	domain.AccountRepository
	checks int
}

func (s *saturatedAccountRepo) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	s.checks++
	return true, nil
}

func TestAccountNumberGeneratorProducesValidNumbers(t *testing.T) {
	generator := NewAccountNumberGenerator(&stubAccountRepo{taken: map[string]bool{}})

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		number, err := generator.Next(context.Background(), domain.AccountTypeChecking)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !IsValidAccountNumber(number) {
			t.Fatalf("generated invalid account number %q", number)
		}
		if seen[number] {
			t.Fatalf("duplicate account number %q", number)
		}
		seen[number] = true
	}
}

func TestAccountNumberGeneratorExhaustsBoundedAttempts(t *testing.T) {
	repo := &saturatedAccountRepo{}
	generator := NewAccountNumberGenerator(repo)

	_, err := generator.Next(context.Background(), domain.AccountTypeChecking)
	if !errors.Is(err, domain.ErrGenerationExhausted) {
		t.Fatalf("expected generation exhausted, got %v", err)
	}
	if repo.checks != defaultMaxAttempts {
		t.Fatalf("expected %d uniqueness checks, got %d", defaultMaxAttempts, repo.checks)
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	valid := []string{"ACC-0000000001", "ACC-9999999999"}
	for _, number := range valid {
		if !IsValidAccountNumber(number) {
			t.Errorf("expected %q valid", number)
		}
	}

	invalid := []string{"", "ACC-123", "acc-0000000001", "ACC-00000000011", "XYZ-0000000001"}
	for _, number := range invalid {
		if IsValidAccountNumber(number) {
			t.Errorf("expected %q invalid", number)
		}
	}
}
