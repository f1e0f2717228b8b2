package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"github.com/eaglebank/wallet-service/internal/cqrs"
	"github.com/eaglebank/wallet-service/internal/middleware"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ---- mock implementations ----

type mockWalletCommander struct {
	changePasswordFn func(cqrs.ChangePasswordCommand) error
	changeEmailFn    func(cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error)
	updateBalanceFn  func(cqrs.UpdateBalanceCommand) error
	updateStatusFn   func(cqrs.UpdateTransactionStatusCommand) error
}

func (m *mockWalletCommander) ChangePassword(_ context.Context, cmd cqrs.ChangePasswordCommand) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(cmd)
	}
	return fmt.Errorf("not configured")
}
func (m *mockWalletCommander) ChangeEmail(_ context.Context, cmd cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error) {
	if m.changeEmailFn != nil {
		return m.changeEmailFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockWalletCommander) UpdateBalance(_ context.Context, cmd cqrs.UpdateBalanceCommand) error {
	if m.updateBalanceFn != nil {
		return m.updateBalanceFn(cmd)
	}
	return fmt.Errorf("not configured")
}
func (m *mockWalletCommander) UpdateTransactionStatus(_ context.Context, cmd cqrs.UpdateTransactionStatusCommand) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockWalletQuerier struct {
	getUserInfoFn func(cqrs.GetUserInfoQuery) (*models.ProfileView, error)
}

func (m *mockWalletQuerier) GetUserInfo(_ context.Context, q cqrs.GetUserInfoQuery) (*models.ProfileView, error) {
	if m.getUserInfoFn != nil {
		return m.getUserInfoFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type recordedOperation struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	ops []recordedOperation
}

func (r *fakeRecorder) RecordOperation(operation, outcome string) {
	r.ops = append(r.ops, recordedOperation{operation: operation, outcome: outcome})
}

// ---- helpers ----

func fakeAuthWallet(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	}
}

func newWalletTestRouter(cmds WalletCommander, qrys WalletQuerier, authUserID string, recorder OperationRecorder) *gin.Engine {
	return newWalletTestRouterWithLogger(cmds, qrys, authUserID, recorder, zap.NewNop())
}

func newWalletTestRouterWithLogger(cmds WalletCommander, qrys WalletQuerier, authUserID string, recorder OperationRecorder, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	r.Use(fakeAuthWallet(authUserID))
	h := NewWalletHandler(cmds, qrys, recorder, logger)
	h.RegisterRoutes(r.Group("/v1/wallet"))
	return r
}

func walletDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		var payload string
		if raw, ok := body.(string); ok {
			payload = raw
		} else {
			b, _ := json.Marshal(body)
			payload = string(b)
		}
		req, _ = http.NewRequest(method, url, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func responseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Message
}

// ---- test data ----

var wTestProfile = &models.ProfileView{
	ID:             "acc-001",
	Owner:          models.OwnerView{ID: "usr-001", Email: "a@x.com", Fullname: "Ada Lovelace"},
	Balance:        100,
	TransactionNum: 1,
	Transactions: []models.Transaction{
		{ID: "doc-1", OwnerID: "usr-001", TransactionID: "T1", Amount: 100, Status: "pending"},
	},
}

// ---- tests ----

func TestGetUserInfo(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		authUserID     string
		getUserInfoFn  func(cqrs.GetUserInfoQuery) (*models.ProfileView, error)
		expectedStatus int
	}{
		{
			name: "success - profile with transactions",
			body: map[string]interface{}{"ownerID": "usr-001"},
			getUserInfoFn: func(q cqrs.GetUserInfoQuery) (*models.ProfileView, error) {
				if q.OwnerID != "usr-001" {
					return nil, fmt.Errorf("unexpected owner %q", q.OwnerID)
				}
				return wTestProfile, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "token identity wins over body ownerID",
			body:       map[string]interface{}{"ownerID": "usr-999"},
			authUserID: "usr-001",
			getUserInfoFn: func(q cqrs.GetUserInfoQuery) (*models.ProfileView, error) {
				if q.OwnerID != "usr-001" {
					return nil, fmt.Errorf("unexpected owner %q", q.OwnerID)
				}
				return wTestProfile, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "server error - account not found",
			body: map[string]interface{}{"ownerID": "usr-404"},
			getUserInfoFn: func(q cqrs.GetUserInfoQuery) (*models.ProfileView, error) {
				return nil, apperrors.ErrAccountNotFound
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "server error - empty body",
			body:           nil,
			getUserInfoFn:  func(q cqrs.GetUserInfoQuery) (*models.ProfileView, error) { return nil, apperrors.ErrValidation },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newWalletTestRouter(&mockWalletCommander{}, &mockWalletQuerier{getUserInfoFn: tt.getUserInfoFn}, tt.authUserID, nil)
			w := walletDoRequest(router, http.MethodPost, "/v1/wallet/user-info", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusInternalServerError {
				if got := responseMessage(t, w); got != msgFetchFailed {
					t.Errorf("[%s] expected message %q, got %q", tt.name, msgFetchFailed, got)
				}
				return
			}
			var view models.ProfileView
			if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
				t.Fatalf("decode view: %v", err)
			}
			if view.Owner.Email != "a@x.com" || len(view.Transactions) != 1 {
				t.Errorf("[%s] unexpected view: %+v", tt.name, view)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name             string
		body             interface{}
		changePasswordFn func(cqrs.ChangePasswordCommand) error
		expectedStatus   int
		expectedMessage  string
	}{
		{
			name: "success - long enough password",
			body: map[string]interface{}{"ownerID": "usr-001", "newPassword": "abcdefgh"},
			changePasswordFn: func(cmd cqrs.ChangePasswordCommand) error {
				if cmd.OwnerID != "usr-001" || cmd.NewPassword != "abcdefgh" {
					return fmt.Errorf("unexpected command %+v", cmd)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: msgPasswordChanged,
		},
		{
			name: "success - four emoji count as eight units",
			body: map[string]interface{}{"ownerID": "usr-001", "newPassword": "😀😀😀😀"},
			changePasswordFn: func(cmd cqrs.ChangePasswordCommand) error {
				if cmd.NewPassword != "😀😀😀😀" {
					return fmt.Errorf("unexpected command %+v", cmd)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: msgPasswordChanged,
		},
		{
			name:            "unauthorized - three emoji",
			body:            map[string]interface{}{"ownerID": "usr-001", "newPassword": "😀😀😀"},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgPasswordTooShort,
		},
		{
			name:            "unauthorized - seven characters",
			body:            map[string]interface{}{"ownerID": "usr-001", "newPassword": "abcdefg"},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgPasswordTooShort,
		},
		{
			name:            "unauthorized - missing password",
			body:            map[string]interface{}{"ownerID": "usr-001"},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgPasswordTooShort,
		},
		{
			name:            "unauthorized - malformed json treated as empty",
			body:            `{"newPassword":`,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgPasswordTooShort,
		},
		{
			name:             "server error - identity missing",
			body:             map[string]interface{}{"ownerID": "usr-404", "newPassword": "abcdefgh"},
			changePasswordFn: func(cmd cqrs.ChangePasswordCommand) error { return apperrors.ErrIdentityNotFound },
			expectedStatus:   http.StatusInternalServerError,
			expectedMessage:  msgPasswordFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{changePasswordFn: tt.changePasswordFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", nil)
			w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/password", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if got := responseMessage(t, w); got != tt.expectedMessage {
				t.Errorf("[%s] expected message %q, got %q", tt.name, tt.expectedMessage, got)
			}
		})
	}
}

func TestChangeEmail(t *testing.T) {
	tests := []struct {
		name            string
		body            interface{}
		changeEmailFn   func(cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "success - new address",
			body: map[string]interface{}{"ownerID": "usr-001", "newEmailAddress": "b@x.com"},
			changeEmailFn: func(cmd cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error) {
				return &cqrs.ChangeEmailResult{EmailAddress: cmd.NewEmailAddress, Changed: true}, nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Email address successfully modified to b@x.com. Check the email address for verification mail",
		},
		{
			name: "ok - same address",
			body: map[string]interface{}{"ownerID": "usr-001", "newEmailAddress": "a@x.com"},
			changeEmailFn: func(cmd cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error) {
				return &cqrs.ChangeEmailResult{EmailAddress: "a@x.com"}, nil
			},
			expectedStatus:  http.StatusOK,
			expectedMessage: msgSameEmail,
		},
		{
			name:            "unauthorized - empty address",
			body:            map[string]interface{}{"ownerID": "usr-001", "newEmailAddress": ""},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgInvalidEmail,
		},
		{
			name: "server error - address already taken",
			body: map[string]interface{}{"ownerID": "usr-001", "newEmailAddress": "c@x.com"},
			changeEmailFn: func(cmd cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error) {
				return nil, apperrors.ErrEmailTaken
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgEmailFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{changeEmailFn: tt.changeEmailFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", nil)
			w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/email", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if got := responseMessage(t, w); got != tt.expectedMessage {
				t.Errorf("[%s] expected message %q, got %q", tt.name, tt.expectedMessage, got)
			}
		})
	}
}

func TestUpdateBalance(t *testing.T) {
	tests := []struct {
		name            string
		body            interface{}
		updateBalanceFn func(cqrs.UpdateBalanceCommand) error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "success - numeric amount",
			body: map[string]interface{}{"ownerID": "owner-1", "emailAddress": "a@x.com", "amount": 500},
			updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error {
				if cmd.RequestingOwnerID != "owner-1" || cmd.EmailAddress != "a@x.com" || cmd.Amount != "500" {
					return fmt.Errorf("unexpected command %+v", cmd)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Balance for user. a@x.com has been modified successfully.",
		},
		{
			name: "success - string amount",
			body: map[string]interface{}{"ownerID": "owner-1", "emailAddress": "a@x.com", "amount": "12.5"},
			updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error {
				if cmd.Amount != "12.5" {
					return fmt.Errorf("unexpected amount %q", cmd.Amount)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Balance for user. a@x.com has been modified successfully.",
		},
		{
			name:            "unauthorized - no ownerID",
			body:            map[string]interface{}{"emailAddress": "a@x.com", "amount": 500},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgNoPermission,
		},
		{
			name:            "unauthorized - missing email",
			body:            map[string]interface{}{"ownerID": "owner-1", "amount": 500},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgBalanceIncomplete,
		},
		{
			name:            "unauthorized - zero amount counts as missing",
			body:            map[string]interface{}{"ownerID": "owner-1", "emailAddress": "a@x.com", "amount": 0},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgBalanceIncomplete,
		},
		{
			name:            "unauthorized - empty string amount",
			body:            map[string]interface{}{"ownerID": "owner-1", "emailAddress": "a@x.com", "amount": ""},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgBalanceIncomplete,
		},
		{
			name:            "unauthorized - caller is not the owner",
			body:            map[string]interface{}{"ownerID": "someone-else", "emailAddress": "a@x.com", "amount": 500},
			updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error { return apperrors.ErrUnauthorized },
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgNoPermission,
		},
		{
			name:            "server error - unknown target",
			body:            map[string]interface{}{"ownerID": "owner-1", "emailAddress": "ghost@x.com", "amount": 500},
			updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error { return apperrors.ErrTargetNotFound },
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgBalanceFailed,
		},
		{
			name:            "server error - non numeric amount",
			body:            map[string]interface{}{"ownerID": "owner-1", "emailAddress": "a@x.com", "amount": "abc"},
			updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error { return apperrors.ErrInvalidAmount },
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgBalanceFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{updateBalanceFn: tt.updateBalanceFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", nil)
			w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/balance", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if got := responseMessage(t, w); got != tt.expectedMessage {
				t.Errorf("[%s] expected message %q, got %q", tt.name, tt.expectedMessage, got)
			}
		})
	}
}

func TestUpdateTransactionStatus(t *testing.T) {
	validBody := func() map[string]interface{} {
		return map[string]interface{}{
			"ownerID":       "owner-1",
			"emailAddress":  "a@x.com",
			"transactionID": "T1",
			"status":        "delivered",
		}
	}
	without := func(key string) map[string]interface{} {
		b := validBody()
		delete(b, key)
		return b
	}

	tests := []struct {
		name            string
		body            interface{}
		updateStatusFn  func(cqrs.UpdateTransactionStatusCommand) error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "success - delivered",
			body: validBody(),
			updateStatusFn: func(cmd cqrs.UpdateTransactionStatusCommand) error {
				want := cqrs.UpdateTransactionStatusCommand{
					RequestingOwnerID: "owner-1", EmailAddress: "a@x.com", TransactionID: "T1", Status: "delivered",
				}
				if cmd != want {
					return fmt.Errorf("unexpected command %+v", cmd)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: msgStatusUpdated,
		},
		{
			name: "success - numeric status keeps the other fields",
			body: `{"ownerID":"owner-1","emailAddress":"a@x.com","transactionID":"T1","status":5}`,
			updateStatusFn: func(cmd cqrs.UpdateTransactionStatusCommand) error {
				want := cqrs.UpdateTransactionStatusCommand{
					RequestingOwnerID: "owner-1", EmailAddress: "a@x.com", TransactionID: "T1", Status: "5",
				}
				if cmd != want {
					return fmt.Errorf("unexpected command %+v", cmd)
				}
				return nil
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: msgStatusUpdated,
		},
		{
			name:            "unauthorized - false status counts as missing",
			body:            `{"ownerID":"owner-1","emailAddress":"a@x.com","transactionID":"T1","status":false}`,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgStatusIncomplete,
		},
		{
			name:            "unauthorized - no ownerID",
			body:            without("ownerID"),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgNoPermission,
		},
		{
			name:            "unauthorized - missing transactionID",
			body:            without("transactionID"),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgStatusIncomplete,
		},
		{
			name:            "unauthorized - missing status",
			body:            without("status"),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgStatusIncomplete,
		},
		{
			name:            "unauthorized - missing email",
			body:            without("emailAddress"),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgStatusIncomplete,
		},
		{
			name:            "unauthorized - caller is not the owner",
			body:            validBody(),
			updateStatusFn:  func(cmd cqrs.UpdateTransactionStatusCommand) error { return apperrors.ErrUnauthorized },
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: msgNoPermission,
		},
		{
			name:            "ok - no user with the email",
			body:            validBody(),
			updateStatusFn:  func(cmd cqrs.UpdateTransactionStatusCommand) error { return apperrors.ErrTargetNotFound },
			expectedStatus:  http.StatusOK,
			expectedMessage: msgNoUserFound,
		},
		{
			name:            "ok - no matching transaction",
			body:            validBody(),
			updateStatusFn:  func(cmd cqrs.UpdateTransactionStatusCommand) error { return apperrors.ErrTransactionNotFound },
			expectedStatus:  http.StatusOK,
			expectedMessage: msgNoTransactionFound,
		},
		{
			name:            "server error - storage failure",
			body:            validBody(),
			updateStatusFn:  func(cmd cqrs.UpdateTransactionStatusCommand) error { return fmt.Errorf("connection reset") },
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: msgStatusUpdateFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{updateStatusFn: tt.updateStatusFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", nil)
			w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/transaction-status", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if got := responseMessage(t, w); got != tt.expectedMessage {
				t.Errorf("[%s] expected message %q, got %q", tt.name, tt.expectedMessage, got)
			}
		})
	}
}

func TestUpdateTransactionStatus_TokenIdentityFillsOwner(t *testing.T) {
	var got cqrs.UpdateTransactionStatusCommand
	cmds := &mockWalletCommander{updateStatusFn: func(cmd cqrs.UpdateTransactionStatusCommand) error {
		got = cmd
		return nil
	}}
	router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "owner-1", nil)
	body := map[string]interface{}{"emailAddress": "a@x.com", "transactionID": "T1", "status": "delivered"}
	w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/transaction-status", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", w.Code, w.Body.String())
	}
	if got.RequestingOwnerID != "owner-1" {
		t.Errorf("expected requesting owner from token, got %q", got.RequestingOwnerID)
	}
}

func TestWalletHandler_RecordsOperationOutcomes(t *testing.T) {
	recorder := &fakeRecorder{}
	cmds := &mockWalletCommander{
		updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error { return apperrors.ErrUnauthorized },
		changePasswordFn: func(cmd cqrs.ChangePasswordCommand) error {
			return nil
		},
	}
	router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", recorder)

	walletDoRequest(router, http.MethodPatch, "/v1/wallet/password", map[string]interface{}{"ownerID": "u", "newPassword": "abcdefgh"})
	walletDoRequest(router, http.MethodPatch, "/v1/wallet/password", map[string]interface{}{"ownerID": "u", "newPassword": "short"})
	walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/balance", map[string]interface{}{"ownerID": "u", "emailAddress": "a@x.com", "amount": 1})

	want := []recordedOperation{
		{operation: opChangePassword, outcome: "success"},
		{operation: opChangePassword, outcome: "validation"},
		{operation: opUpdateBalance, outcome: "unauthorized"},
	}
	if len(recorder.ops) != len(want) {
		t.Fatalf("expected %d recorded operations, got %+v", len(want), recorder.ops)
	}
	for i := range want {
		if recorder.ops[i] != want[i] {
			t.Errorf("operation %d: expected %+v, got %+v", i, want[i], recorder.ops[i])
		}
	}
}

func TestJSONAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantText     string
		wantSupplied bool
	}{
		{name: "integer", input: `500`, wantText: "500", wantSupplied: true},
		{name: "negative float", input: `-2.5`, wantText: "-2.5", wantSupplied: true},
		{name: "zero", input: `0`, wantText: "0"},
		{name: "numeric string", input: `"42"`, wantText: "42", wantSupplied: true},
		{name: "empty string", input: `""`},
		{name: "non numeric string", input: `"abc"`, wantText: "abc", wantSupplied: true},
		{name: "null", input: `null`},
		{name: "true", input: `true`, wantText: "1", wantSupplied: true},
		{name: "false", input: `false`, wantText: "0"},
		{name: "single element array", input: `[5]`, wantText: "5", wantSupplied: true},
		{name: "empty array", input: `[]`, wantText: "", wantSupplied: true},
		{name: "two element array", input: `[1,2]`, wantText: "1,2", wantSupplied: true},
		{name: "nested array", input: `[[7]]`, wantText: "7", wantSupplied: true},
		{name: "hex string", input: `"0x10"`, wantText: "0x10", wantSupplied: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateBalanceRequest
			if err := json.Unmarshal([]byte(`{"amount":`+tt.input+`}`), &req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Amount.Text != tt.wantText || req.Amount.Supplied != tt.wantSupplied {
				t.Errorf("expected {%q %v}, got {%q %v}", tt.wantText, tt.wantSupplied, req.Amount.Text, req.Amount.Supplied)
			}
		})
	}
}

func TestLooseString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LooseString
	}{
		{name: "string", input: `"delivered"`, want: "delivered"},
		{name: "empty string", input: `""`, want: ""},
		{name: "integer", input: `5`, want: "5"},
		{name: "zero", input: `0`, want: ""},
		{name: "true", input: `true`, want: "true"},
		{name: "false", input: `false`, want: ""},
		{name: "null", input: `null`, want: ""},
		{name: "array", input: `["a","b"]`, want: "a,b"},
		{name: "object", input: `{"a":1}`, want: "[object Object]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTransactionStatusRequest
			body := `{"status":` + tt.input + `,"transactionID":"T1"}`
			if err := json.Unmarshal([]byte(body), &req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, req.Status)
			}
			if req.TransactionID != "T1" {
				t.Errorf("expected sibling field to survive, got %q", req.TransactionID)
			}
		})
	}
}

func TestUpdateBalance_ArrayAmountIsUnwrapped(t *testing.T) {
	var got cqrs.UpdateBalanceCommand
	cmds := &mockWalletCommander{updateBalanceFn: func(cmd cqrs.UpdateBalanceCommand) error {
		got = cmd
		return nil
	}}
	router := newWalletTestRouter(cmds, &mockWalletQuerier{}, "", nil)
	w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/balance", `{"ownerID":"owner-1","emailAddress":"a@x.com","amount":[5]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", w.Code, w.Body.String())
	}
	if got.Amount != "5" {
		t.Errorf("expected amount %q, got %q", "5", got.Amount)
	}
}

func TestWalletHandler_LogsRejectedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newWalletTestRouterWithLogger(&mockWalletCommander{}, &mockWalletQuerier{}, "", nil, zap.New(core))

	w := walletDoRequest(router, http.MethodPatch, "/v1/wallet/admin/balance", map[string]interface{}{"ownerID": "owner-1", "amount": 0})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	entries := logs.FilterMessage("request rejected").All()
	if len(entries) != 1 {
		t.Fatalf("expected one rejection entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["operation"] != opUpdateBalance {
		t.Errorf("expected operation %q, got %v", opUpdateBalance, fields["operation"])
	}
	rejected, ok := fields["fields"].([]middleware.ValidationError)
	if !ok {
		t.Fatalf("expected validation errors in entry, got %T", fields["fields"])
	}
	var names []string
	for _, v := range rejected {
		names = append(names, v.Field)
	}
	if strings.Join(names, ",") != "EmailAddress,Amount" {
		t.Errorf("expected EmailAddress and Amount to be reported, got %v", names)
	}
}
