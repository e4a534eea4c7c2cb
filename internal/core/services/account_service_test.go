package services_test

import (
	"context"
	"testing"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/core/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
}

func strPtr(s string) *string { return &s }

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountID:   "1110",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("1110", created.AccountID)
	suite.Equal(domain.Asset, created.AccountType)
	suite.True(created.IsActive)
	suite.True(created.Balance.IsZero())
	suite.Empty(created.ParentAccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_WithParent() {
	ctx := context.Background()
	parent := domain.Account{AccountID: "1000", Name: "Assets", AccountType: domain.Asset, IsActive: true}
	req := dto.CreateAccountRequest{
		AccountID:       "1110",
		Name:            "Cash",
		AccountType:     domain.Asset,
		ParentAccountID: strPtr("1000"),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1000").Return(&parent, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("1000", created.ParentAccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotFound() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountID:       "1110",
		Name:            "Cash",
		AccountType:     domain.Asset,
		ParentAccountID: strPtr("9999"),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	// A bad parent reference is invalid input, not a lookup miss.
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("parent_not_found", apperrors.ValidationReason(err))
	suite.Nil(created)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_EmptyName() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountID:   "1110",
		Name:        "",
		AccountType: domain.Asset,
	}

	created, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("empty_name", apperrors.ValidationReason(err))
	suite.Nil(created)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountID:   "1110",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	created, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	// A duplicate code is a form of invalid input.
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NameOnly() {
	ctx := context.Background()
	existing := domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Petty Cash" && a.AccountType == domain.Asset
	}), false).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "1110", dto.UpdateAccountRequest{Name: strPtr("Petty Cash")})

	suite.Require().NoError(err)
	suite.Equal("Petty Cash", updated.Name)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_EmptyNameRejected() {
	ctx := context.Background()
	existing := domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&existing, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "1110", dto.UpdateAccountRequest{Name: strPtr("")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("empty_name", apperrors.ValidationReason(err))
	suite.Nil(updated)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ReparentToMissingParentFails() {
	ctx := context.Background()
	existing := domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&existing, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	updated, err := suite.service.UpdateAccount(ctx, "1110", dto.UpdateAccountRequest{ParentAccountID: strPtr("9999")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("parent_not_found", apperrors.ValidationReason(err))
	suite.Nil(updated)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_UnknownAccountIsNotFound() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	updated, err := suite.service.UpdateAccount(ctx, "9999", dto.UpdateAccountRequest{Name: strPtr("Ghost")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(updated)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_TypeChangeRecomputesBalance() {
	ctx := context.Background()
	existing := domain.Account{AccountID: "4100", Name: "Misc", AccountType: domain.Revenue, IsActive: true, Balance: decimal.NewFromInt(75)}
	reloaded := existing
	reloaded.AccountType = domain.Expense
	reloaded.Balance = decimal.NewFromInt(-75)
	newType := domain.Expense

	suite.mockAccountRepo.On("FindAccountByID", ctx, "4100").Return(&existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account"), true).Return(nil).Once()
	// Reloaded after the recompute so the response carries the fresh balance.
	suite.mockAccountRepo.On("FindAccountByID", ctx, "4100").Return(&reloaded, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "4100", dto.UpdateAccountRequest{AccountType: &newType})

	suite.Require().NoError(err)
	suite.Equal(domain.Expense, updated.AccountType)
	suite.True(updated.Balance.Equal(decimal.NewFromInt(-75)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ReparentToOwnDescendantFails() {
	ctx := context.Background()
	// 1000 -> 1100 -> 1110; reparenting 1000 under 1110 closes a loop.
	root := domain.Account{AccountID: "1000", AccountType: domain.Asset, IsActive: true}
	mid := domain.Account{AccountID: "1100", AccountType: domain.Asset, ParentAccountID: "1000", IsActive: true}
	leaf := domain.Account{AccountID: "1110", AccountType: domain.Asset, ParentAccountID: "1100", IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1000").Return(&root, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&leaf, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "1100").Return(&mid, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "1000", dto.UpdateAccountRequest{ParentAccountID: strPtr("1110")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal("parent_cycle", apperrors.ValidationReason(err))
	suite.Nil(updated)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_SelfParentFails() {
	ctx := context.Background()
	existing := domain.Account{AccountID: "1110", AccountType: domain.Asset, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&existing, nil).Once()

	_, err := suite.service.UpdateAccount(ctx, "1110", dto.UpdateAccountRequest{ParentAccountID: strPtr("1110")})

	suite.Require().Error(err)
	suite.Equal("parent_cycle", apperrors.ValidationReason(err))
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_ConflictPropagates() {
	ctx := context.Background()
	suite.mockAccountRepo.On("DeleteAccount", ctx, "1110").Return(apperrors.ErrConflict).Once()

	err := suite.service.DeleteAccount(ctx, "1110")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AccountServiceTestSuite) TestSetAccountActive_ReturnsUpdatedAccount() {
	ctx := context.Background()
	deactivated := domain.Account{AccountID: "1110", AccountType: domain.Asset, IsActive: false, Balance: decimal.NewFromInt(30)}

	suite.mockAccountRepo.On("SetAccountActive", ctx, "1110", false, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&deactivated, nil).Once()

	account, err := suite.service.SetAccountActive(ctx, "1110", false)

	suite.Require().NoError(err)
	suite.False(account.IsActive)
	// Deactivation preserves balance and history.
	suite.True(account.Balance.Equal(decimal.NewFromInt(30)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestToggleAccount_FlipsActiveFlag() {
	ctx := context.Background()
	active := domain.Account{AccountID: "1110", AccountType: domain.Asset, IsActive: true}
	deactivated := domain.Account{AccountID: "1110", AccountType: domain.Asset, IsActive: false}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&active, nil).Once()
	suite.mockAccountRepo.On("SetAccountActive", ctx, "1110", false, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&deactivated, nil).Once()

	account, err := suite.service.ToggleAccount(ctx, "1110")

	suite.Require().NoError(err)
	suite.False(account.IsActive)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance_InactiveAccountStillAnswers() {
	ctx := context.Background()
	inactive := domain.Account{AccountID: "1110", AccountType: domain.Asset, IsActive: false, Balance: decimal.RequireFromString("12.34")}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "1110").Return(&inactive, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, "1110")

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("12.34")))
}

func (suite *AccountServiceTestSuite) TestListHierarchy_PreorderAndRestartable() {
	ctx := context.Background()
	accounts := []domain.Account{
		{AccountID: "2000", AccountType: domain.Liability},
		{AccountID: "1110", AccountType: domain.Asset, ParentAccountID: "1000"},
		{AccountID: "1000", AccountType: domain.Asset},
		{AccountID: "1100", AccountType: domain.Asset, ParentAccountID: "1000"},
		{AccountID: "1111", AccountType: domain.Asset, ParentAccountID: "1110"},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()

	seq, err := suite.service.ListHierarchy(ctx)
	suite.Require().NoError(err)

	collect := func() []string {
		var ids []string
		for acc := range seq {
			ids = append(ids, acc.AccountID)
		}
		return ids
	}

	want := []string{"1000", "1100", "1110", "1111", "2000"}
	suite.Equal(want, collect())
	// The sequence iterates over a snapshot and can be replayed.
	suite.Equal(want, collect())
}

func (suite *AccountServiceTestSuite) TestListHierarchy_EarlyBreak() {
	ctx := context.Background()
	accounts := []domain.Account{
		{AccountID: "1000", AccountType: domain.Asset},
		{AccountID: "2000", AccountType: domain.Liability},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()

	seq, err := suite.service.ListHierarchy(ctx)
	suite.Require().NoError(err)

	var first string
	for acc := range seq {
		first = acc.AccountID
		break
	}
	suite.Equal("1000", first)
}

func (suite *AccountServiceTestSuite) TestListHierarchy_MissingParentTreatedAsRoot() {
	ctx := context.Background()
	accounts := []domain.Account{
		{AccountID: "1100", AccountType: domain.Asset, ParentAccountID: "gone"},
		{AccountID: "1000", AccountType: domain.Asset},
	}

	suite.mockAccountRepo.On("ListAccounts", ctx).Return(accounts, nil).Once()

	seq, err := suite.service.ListHierarchy(ctx)
	suite.Require().NoError(err)

	var ids []string
	for acc := range seq {
		ids = append(ids, acc.AccountID)
	}
	suite.Equal([]string{"1000", "1100"}, ids)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
