package domain

import "time"

type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal       TransactionType = "WITHDRAWAL"
	TransactionTypeTransferIn       TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut      TransactionType = "TRANSFER_OUT"
	TransactionTypeMonthlyFee       TransactionType = "MONTHLY_FEE"
	TransactionTypeOverdraftFee     TransactionType = "OVERDRAFT_FEE"
	TransactionTypeInterestEarned   TransactionType = "INTEREST_EARNED"
	TransactionTypeInterestCharged  TransactionType = "INTEREST_CHARGED"
	TransactionTypeCheckDeposit     TransactionType = "CHECK_DEPOSIT"
	TransactionTypeATMWithdrawal    TransactionType = "ATM_WITHDRAWAL"
	TransactionTypeWireTransferIn   TransactionType = "WIRE_TRANSFER_IN"
	TransactionTypeWireTransferOut  TransactionType = "WIRE_TRANSFER_OUT"
	TransactionTypeDirectDeposit    TransactionType = "DIRECT_DEPOSIT"
	TransactionTypeACHDebit         TransactionType = "ACH_DEBIT"
	TransactionTypeACHCredit        TransactionType = "ACH_CREDIT"
	TransactionTypeAdjustmentCredit TransactionType = "ADJUSTMENT_CREDIT"
	TransactionTypeAdjustmentDebit  TransactionType = "ADJUSTMENT_DEBIT"
	TransactionTypeReversal         TransactionType = "REVERSAL"
)

type direction struct {
	increasesBalance bool
	decreasesBalance bool
}

// transactionDirections is the single source of truth for how each type
// moves a balance. The processor dispatches on this table only; there is
// no per-type special casing anywhere else. REVERSAL is directionless,
// its effect is the inverse of the transaction it reverses.
var transactionDirections = map[TransactionType]direction{
	TransactionTypeDeposit:          {increasesBalance: true},
	TransactionTypeWithdrawal:       {decreasesBalance: true},
	TransactionTypeTransferIn:       {increasesBalance: true},
	TransactionTypeTransferOut:      {decreasesBalance: true},
	TransactionTypeMonthlyFee:       {decreasesBalance: true},
	TransactionTypeOverdraftFee:     {decreasesBalance: true},
	TransactionTypeInterestEarned:   {increasesBalance: true},
	TransactionTypeInterestCharged:  {decreasesBalance: true},
	TransactionTypeCheckDeposit:     {increasesBalance: true},
	TransactionTypeATMWithdrawal:    {decreasesBalance: true},
	TransactionTypeWireTransferIn:   {increasesBalance: true},
	TransactionTypeWireTransferOut:  {decreasesBalance: true},
	TransactionTypeDirectDeposit:    {increasesBalance: true},
	TransactionTypeACHDebit:         {decreasesBalance: true},
	TransactionTypeACHCredit:        {increasesBalance: true},
	TransactionTypeAdjustmentCredit: {increasesBalance: true},
	TransactionTypeAdjustmentDebit:  {decreasesBalance: true},
	TransactionTypeReversal:         {},
}

func (t TransactionType) IncreasesBalance() bool {
	return transactionDirections[t].increasesBalance
}

func (t TransactionType) DecreasesBalance() bool {
	return transactionDirections[t].decreasesBalance
}

func (t TransactionType) IsKnown() bool {
	_, ok := transactionDirections[t]
	return ok
}

func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferIn || t == TransactionTypeTransferOut ||
		t == TransactionTypeWireTransferIn || t == TransactionTypeWireTransferOut
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// LedgerTransaction is the immutable record of one balance-affecting
// event. Once COMPLETED only the Reversed flag may change; a reversal is
// a new REVERSAL transaction linked via RelatedTransactionID, never an
// in-place mutation of the original.
type LedgerTransaction struct {
	TransactionID        string
	Type                 TransactionType
	Amount               Money
	Fees                 Money
	Timestamp            time.Time
	Status               TransactionStatus
	SourceAccountID      string
	DestinationAccountID string
	CorrelationID        string
	RelatedTransactionID string
	Reversed             bool
	Description          string
}

// AffectedAccountID is the account whose balance this transaction moved:
// the destination for balance-increasing transfer legs, the source for
// everything else.
func (t LedgerTransaction) AffectedAccountID() string {
	if t.Type.IncreasesBalance() && t.DestinationAccountID != "" {
		return t.DestinationAccountID
	}
	return t.SourceAccountID
}
