package accounting

import (
	"fmt"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Validation reason codes surfaced through apperrors.ValidationError.
const (
	ReasonTooFewEntries   = "too_few_entries"
	ReasonEntryAmbiguous  = "entry_ambiguous"
	ReasonNegativeAmount  = "negative_amount"
	ReasonUnbalanced      = "unbalanced"
	ReasonZeroTransaction = "zero_transaction"
)

// currencyPlaces is the number of fractional digits of the currency's
// smallest unit. Amounts are normalized to this precision before any
// comparison, absorbing sub-cent rounding noise from external input.
const currencyPlaces = 2

// Normalize rounds an amount to the currency's smallest unit, half away
// from zero.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPlaces)
}

// SignedAmount returns the effect of an entry on an account of the given
// type, following the normal balance convention: debits increase asset and
// expense accounts, credits increase liability, equity and revenue accounts.
func SignedAmount(e domain.Entry, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, e.AccountID)
	}
	if accountType.IsDebitNormal() {
		return e.Debit.Sub(e.Credit), nil
	}
	return e.Credit.Sub(e.Debit), nil
}

// ValidateEntries enforces the double-entry rules on a candidate entry set.
// It is pure: no persistence, no account lookups. The same checks run on
// post and on edit; any client-side balance preview is advisory only.
//
// The rules, in check order:
//   - at least two entries
//   - each entry is either a debit line or a credit line, never both or
//     neither
//   - no negative amounts
//   - sum(debit) == sum(credit) at currency precision
//   - the balanced sum is strictly greater than zero
func ValidateEntries(entries []domain.Entry) error {
	if len(entries) < 2 {
		return apperrors.NewValidationError(ReasonTooFewEntries,
			fmt.Sprintf("transaction requires at least 2 entries, got %d", len(entries)))
	}

	debitSum := decimal.Zero
	creditSum := decimal.Zero

	for i, e := range entries {
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return apperrors.NewValidationError(ReasonNegativeAmount,
				fmt.Sprintf("entry %d for account %s has a negative amount", i+1, e.AccountID))
		}
		// Checked on the raw values: an input that only normalizes to zero is
		// a zero transaction, not an ambiguous line.
		if e.Debit.IsZero() == e.Credit.IsZero() {
			return apperrors.NewValidationError(ReasonEntryAmbiguous,
				fmt.Sprintf("entry %d for account %s must have exactly one of debit or credit set", i+1, e.AccountID))
		}

		debitSum = debitSum.Add(Normalize(e.Debit))
		creditSum = creditSum.Add(Normalize(e.Credit))
	}

	if !debitSum.Equal(creditSum) {
		return apperrors.NewValidationError(ReasonUnbalanced,
			fmt.Sprintf("debits sum to %s but credits sum to %s", debitSum.StringFixed(currencyPlaces), creditSum.StringFixed(currencyPlaces)))
	}
	if debitSum.IsZero() {
		return apperrors.NewValidationError(ReasonZeroTransaction, "transaction amount must be greater than zero")
	}

	return nil
}

// BalanceChanges aggregates the net signed effect of an entry set per
// account, given each account's type. Used to adjust cached balances in the
// same database transaction that persists the entries.
func BalanceChanges(entries []domain.Entry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		accountType, ok := accountTypes[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not known for account %s", e.AccountID)
		}
		signed, err := SignedAmount(e, accountType)
		if err != nil {
			return nil, err
		}
		changes[e.AccountID] = changes[e.AccountID].Add(signed)
	}
	return changes, nil
}
