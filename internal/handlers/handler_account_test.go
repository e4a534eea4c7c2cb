package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/openbooks/ledger_app/internal/handlers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockAccountSvc  *MockAccountService
	mockTxnSvc      *MockTransactionService
	mockQuerySvc    *MockQueryService
	mockReportSvc   *MockReportingService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockAccountSvc = new(MockAccountService)
	suite.mockTxnSvc = new(MockTransactionService)
	suite.mockQuerySvc = new(MockQueryService)
	suite.mockReportSvc = new(MockReportingService)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &portssvc.ServiceContainer{
		Account:     suite.mockAccountSvc,
		Transaction: suite.mockTxnSvc,
		Query:       suite.mockQuerySvc,
		Reporting:   suite.mockReportSvc,
	})
}

func (suite *AccountHandlerTestSuite) perform(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func seqOf(accounts ...domain.Account) iter.Seq[domain.Account] {
	return func(yield func(domain.Account) bool) {
		for _, acc := range accounts {
			if !yield(acc) {
				return
			}
		}
	}
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	account := &domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockAccountSvc.On("CreateAccount", mock.Anything, mock.AnythingOfType("dto.CreateAccountRequest")).Return(account, nil).Once()

	w := suite.perform(http.MethodPost, "/api/v1/accounts", gin.H{
		"accountID":   "1110",
		"name":        "Cash",
		"accountType": "ASSET",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("1110", resp.AccountID)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BadAccountType() {
	w := suite.perform(http.MethodPost, "/api/v1/accounts", gin.H{
		"accountID":   "1110",
		"name":        "Cash",
		"accountType": "WEIRD",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateIsBadRequest() {
	suite.mockAccountSvc.On("CreateAccount", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: account with ID 1110 already exists", apperrors.ErrDuplicate)).Once()

	w := suite.perform(http.MethodPost, "/api/v1/accounts", gin.H{
		"accountID":   "1110",
		"name":        "Cash",
		"accountType": "ASSET",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountSvc.On("GetAccountByID", mock.Anything, "9999").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.perform(http.MethodGet, "/api/v1/accounts/9999", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_HierarchyOrder() {
	suite.mockQuerySvc.On("ListHierarchy", mock.Anything).Return(seqOf(
		domain.Account{AccountID: "1000", Name: "Assets", AccountType: domain.Asset},
		domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, ParentAccountID: "1000"},
	), nil).Once()

	w := suite.perform(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Accounts, 2)
	suite.Equal("1000", resp.Accounts[0].AccountID)
	suite.Equal("1110", resp.Accounts[1].AccountID)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_ConflictIsConflict() {
	suite.mockAccountSvc.On("DeleteAccount", mock.Anything, "1110").
		Return(fmt.Errorf("%w: account 1110 has posted entries", apperrors.ErrConflict)).Once()

	w := suite.perform(http.MethodDelete, "/api/v1/accounts/1110", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Success() {
	suite.mockAccountSvc.On("DeleteAccount", mock.Anything, "1110").Return(nil).Once()

	w := suite.perform(http.MethodDelete, "/api/v1/accounts/1110", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *AccountHandlerTestSuite) TestToggleAccount() {
	account := &domain.Account{AccountID: "1110", Name: "Cash", AccountType: domain.Asset, IsActive: false}
	suite.mockAccountSvc.On("ToggleAccount", mock.Anything, "1110").Return(account, nil).Once()

	w := suite.perform(http.MethodPost, "/api/v1/accounts/1110/toggle", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.IsActive)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance() {
	suite.mockQuerySvc.On("GetAccountBalance", mock.Anything, "1110").
		Return(decimal.RequireFromString("50.00"), nil).Once()

	w := suite.perform(http.MethodGet, "/api/v1/accounts/1110/balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(decimal.RequireFromString("50.00")))
}

func (suite *AccountHandlerTestSuite) TestListAccountEntries_BadLimit() {
	w := suite.perform(http.MethodGet, "/api/v1/accounts/1110/entries?limit=-3", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockQuerySvc.AssertNotCalled(suite.T(), "ListAccountEntries", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCountAccountTransactions() {
	suite.mockQuerySvc.On("CountTransactionsForAccount", mock.Anything, "1110").Return(int64(4), nil).Once()

	w := suite.perform(http.MethodGet, "/api/v1/accounts/1110/transactions/count", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountEntryCountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(4), resp.TransactionCount)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
