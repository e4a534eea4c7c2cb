package mapping_test

import (
	"testing"
	"time"

	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/openbooks/ledger_app/internal/models"
	"github.com/openbooks/ledger_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDomainAccountSlice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ms := []models.Account{
		{
			AccountID:   "1110",
			Name:        "Cash",
			AccountType: models.AccountType(domain.Asset),
			IsActive:    true,
			AuditFields: models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
			Balance:     decimal.NewFromInt(250),
		},
		{
			AccountID:       "1120",
			Name:            "Accounts Receivable",
			AccountType:     models.AccountType(domain.Asset),
			ParentAccountID: "1100",
			IsActive:        true,
			AuditFields:     models.AuditFields{CreatedAt: now, LastUpdatedAt: now},
			Balance:         decimal.Zero,
		},
	}

	ds := mapping.ToDomainAccountSlice(ms)

	assert.Len(t, ds, 2)
	assert.Equal(t, "1110", ds[0].AccountID)
	assert.Equal(t, domain.Asset, ds[0].AccountType)
	assert.True(t, ds[0].Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "1100", ds[1].ParentAccountID)
}

func TestToDomainAccountSlice_Empty(t *testing.T) {
	ds := mapping.ToDomainAccountSlice([]models.Account{})
	assert.NotNil(t, ds)
	assert.Empty(t, ds)
}
