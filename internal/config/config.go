package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

const defaultConnectionString = "host=localhost port=5432 dbname=core_banking_ledger user=postgres password=postgres sslmode=disable"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "LedgerApp"
const defaultChannelKey = "LedgerKey001"

type Config struct {
	HTTPAddr       string
	DatabaseDSN    string
	MigrationsDir  string
	StorageBackend string
	ChannelID      string
	ChannelKey     string
	Policy         Policy
}

// Policy carries the injected business policy: reversal window, daily
// limits, account terms. None of these are core-algorithm constants; a
// TOML file pointed to by LEDGER_POLICY_FILE overrides any default.
type Policy struct {
	ReversalWindowDays int `toml:"reversal_window_days"`
	LockWaitMillis     int `toml:"lock_wait_millis"`
	MaxWriteRetries    int `toml:"max_write_retries"`
	EventQueueSize     int `toml:"event_queue_size"`

	CheckingMinimumDeposit   decimal.Decimal `toml:"checking_minimum_deposit"`
	CheckingMonthlyFee       decimal.Decimal `toml:"checking_monthly_fee"`
	CheckingFreeTransactions int             `toml:"checking_free_transactions"`
	CheckingInterestRate     decimal.Decimal `toml:"checking_interest_rate"`

	SavingsMinimumDeposit  decimal.Decimal `toml:"savings_minimum_deposit"`
	SavingsMinimumBalance  decimal.Decimal `toml:"savings_minimum_balance"`
	SavingsWithdrawalLimit int             `toml:"savings_withdrawal_limit"`
	SavingsInterestRate    decimal.Decimal `toml:"savings_interest_rate"`

	DailyTransferLimits map[string]decimal.Decimal `toml:"daily_transfer_limits"`
	OverdraftLimits     map[string]decimal.Decimal `toml:"overdraft_limits"`
}

func DefaultPolicy() Policy {
	return Policy{
		ReversalWindowDays:       30,
		LockWaitMillis:           3000,
		MaxWriteRetries:          3,
		EventQueueSize:           1024,
		CheckingMinimumDeposit:   decimal.RequireFromString("25"),
		CheckingMonthlyFee:       decimal.RequireFromString("12"),
		CheckingFreeTransactions: 10,
		CheckingInterestRate:     decimal.RequireFromString("0.001"),
		SavingsMinimumDeposit:    decimal.RequireFromString("100"),
		SavingsMinimumBalance:    decimal.RequireFromString("100"),
		SavingsWithdrawalLimit:   6,
		SavingsInterestRate:      decimal.RequireFromString("0.025"),
		DailyTransferLimits: map[string]decimal.Decimal{
			string(domain.CustomerTypeBasic):    decimal.RequireFromString("500"),
			string(domain.CustomerTypePremium):  decimal.RequireFromString("2000"),
			string(domain.CustomerTypeVIP):      decimal.RequireFromString("10000"),
			string(domain.CustomerTypeBusiness): decimal.RequireFromString("50000"),
		},
		OverdraftLimits: map[string]decimal.Decimal{
			string(domain.CustomerTypeBasic):    decimal.Zero,
			string(domain.CustomerTypePremium):  decimal.RequireFromString("500"),
			string(domain.CustomerTypeVIP):      decimal.RequireFromString("2000"),
			string(domain.CustomerTypeBusiness): decimal.RequireFromString("5000"),
		},
	}
}

func (p Policy) ReversalWindow() time.Duration {
	return time.Duration(p.ReversalWindowDays) * 24 * time.Hour
}

func (p Policy) LockWait() time.Duration {
	return time.Duration(p.LockWaitMillis) * time.Millisecond
}

// DailyTransferLimit falls back to the BASIC tier for unknown customer
// types; the tightest limit is the safe default.
func (p Policy) DailyTransferLimit(customerType domain.CustomerType) decimal.Decimal {
	if limit, ok := p.DailyTransferLimits[string(customerType)]; ok {
		return limit
	}
	return p.DailyTransferLimits[string(domain.CustomerTypeBasic)]
}

func (p Policy) OverdraftLimit(customerType domain.CustomerType) decimal.Decimal {
	if limit, ok := p.OverdraftLimits[string(customerType)]; ok {
		return limit
	}
	return decimal.Zero
}

func (p Policy) MinimumDeposit(accountType domain.AccountType) decimal.Decimal {
	if accountType == domain.AccountTypeSavings {
		return p.SavingsMinimumDeposit
	}
	return p.CheckingMinimumDeposit
}

func Load() (Config, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		dsn = defaultConnectionString
	}

	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = defaultHTTPAddr
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	if backend == "" {
		backend = "postgres"
	}
	if backend != "postgres" && backend != "memory" {
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	policy := DefaultPolicy()
	if policyFile := strings.TrimSpace(os.Getenv("LEDGER_POLICY_FILE")); policyFile != "" {
		if _, err := toml.DecodeFile(policyFile, &policy); err != nil {
			return Config{}, fmt.Errorf("decode policy file %q: %w", policyFile, err)
		}
	}
	if err := validatePolicy(policy); err != nil {
		return Config{}, err
	}

	return Config{
		HTTPAddr:       addr,
		DatabaseDSN:    dsn,
		MigrationsDir:  filepath.Join("migrations"),
		StorageBackend: backend,
		ChannelID:      channelID,
		ChannelKey:     channelKey,
		Policy:         policy,
	}, nil
}

func validatePolicy(p Policy) error {
	if p.ReversalWindowDays <= 0 {
		return fmt.Errorf("reversal_window_days must be positive")
	}
	if p.LockWaitMillis <= 0 {
		return fmt.Errorf("lock_wait_millis must be positive")
	}
	if p.MaxWriteRetries < 0 {
		return fmt.Errorf("max_write_retries cannot be negative")
	}
	if p.SavingsWithdrawalLimit <= 0 {
		return fmt.Errorf("savings_withdrawal_limit must be positive")
	}
	if p.SavingsMinimumBalance.IsNegative() || p.CheckingMinimumDeposit.IsNegative() || p.SavingsMinimumDeposit.IsNegative() {
		return fmt.Errorf("policy amounts cannot be negative")
	}
	return nil
}
