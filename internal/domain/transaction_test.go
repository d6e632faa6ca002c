package domain

import "testing"

func TestTransactionDirections(t *testing.T) {
	increasing := []TransactionType{
		TransactionTypeDeposit,
		TransactionTypeTransferIn,
		TransactionTypeInterestEarned,
		TransactionTypeCheckDeposit,
		TransactionTypeWireTransferIn,
		TransactionTypeDirectDeposit,
		TransactionTypeACHCredit,
		TransactionTypeAdjustmentCredit,
	}
	decreasing := []TransactionType{
		TransactionTypeWithdrawal,
		TransactionTypeTransferOut,
		TransactionTypeMonthlyFee,
		TransactionTypeOverdraftFee,
		TransactionTypeInterestCharged,
		TransactionTypeATMWithdrawal,
		TransactionTypeWireTransferOut,
		TransactionTypeACHDebit,
		TransactionTypeAdjustmentDebit,
	}

	for _, txType := range increasing {
		if !txType.IncreasesBalance() || txType.DecreasesBalance() {
			t.Errorf("%s should increase balance only", txType)
		}
	}
	for _, txType := range decreasing {
		if !txType.DecreasesBalance() || txType.IncreasesBalance() {
			t.Errorf("%s should decrease balance only", txType)
		}
	}

	if TransactionTypeReversal.IncreasesBalance() || TransactionTypeReversal.DecreasesBalance() {
		t.Error("REVERSAL must be directionless")
	}
	if !TransactionTypeReversal.IsKnown() {
		t.Error("REVERSAL must be a known type")
	}
	if TransactionType("BOGUS").IsKnown() {
		t.Error("unknown type reported as known")
	}
}

func TestAffectedAccountID(t *testing.T) {
	out := LedgerTransaction{
		Type:                 TransactionTypeTransferOut,
		SourceAccountID:      "src",
		DestinationAccountID: "dst",
	}
	if got := out.AffectedAccountID(); got != "src" {
		t.Fatalf("outgoing leg should affect source, got %s", got)
	}

	in := LedgerTransaction{
		Type:                 TransactionTypeTransferIn,
		SourceAccountID:      "src",
		DestinationAccountID: "dst",
	}
	if got := in.AffectedAccountID(); got != "dst" {
		t.Fatalf("incoming leg should affect destination, got %s", got)
	}

	deposit := LedgerTransaction{
		Type:            TransactionTypeDeposit,
		SourceAccountID: "src",
	}
	if got := deposit.AffectedAccountID(); got != "src" {
		t.Fatalf("deposit should affect source, got %s", got)
	}
}

func TestTransactionStatusTerminal(t *testing.T) {
	terminal := []TransactionStatus{TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	if TransactionStatusPending.IsTerminal() || TransactionStatusProcessing.IsTerminal() {
		t.Error("PENDING and PROCESSING must not be terminal")
	}
}
