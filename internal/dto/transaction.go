package dto

import (
	"time"

	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest is one debit or credit line of a posting request.
// Exactly one of Debit/Credit must be nonzero; the service enforces this
// together with the balance rules, so binding only rejects negatives here.
type CreateEntryRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateTransactionRequest defines the data needed to post a transaction.
type CreateTransactionRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Reference   string               `json:"reference"`
	Entries     []CreateEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// UpdateTransactionRequest replaces a transaction's full entry set and any
// header fields that are present; omitted header fields keep their stored
// values. Partial entry patches are not supported because the balance rules
// only hold over the complete set.
type UpdateTransactionRequest struct {
	Date        *time.Time           `json:"date"`
	Description *string              `json:"description"`
	Reference   *string              `json:"reference"`
	Entries     []CreateEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// EntryResponse defines the data returned for a single entry.
type EntryResponse struct {
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	LineNo      int             `json:"lineNo"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"` // Balanced debit total
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	Entries       []EntryResponse `json:"entries"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	entries := make([]EntryResponse, 0, len(txn.Entries))
	for _, e := range txn.Entries {
		entries = append(entries, EntryResponse{
			EntryID:     e.EntryID,
			AccountID:   e.AccountID,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
			LineNo:      e.LineNo,
		})
	}
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		Date:          txn.Date,
		Description:   txn.Description,
		Reference:     txn.Reference,
		Amount:        txn.TotalDebits(),
		CreatedAt:     txn.CreatedAt,
		LastUpdatedAt: txn.LastUpdatedAt,
		Entries:       entries,
	}
}

// ListTransactionsResponse is a page of transactions with page metadata.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
	TotalItems   int64                 `json:"totalItems"`
	TotalPages   int                   `json:"totalPages"`
	HasPrev      bool                  `json:"hasPrev"`
	HasNext      bool                  `json:"hasNext"`
}
