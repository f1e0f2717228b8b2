package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"github.com/eaglebank/wallet-service/internal/cqrs"
	"github.com/eaglebank/wallet-service/internal/middleware"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgFetchFailed        = "Error fetching data, please try again later."
	msgPasswordTooShort   = "Password length cannot be less than 8 characters"
	msgPasswordChanged    = "Password modified successfully"
	msgPasswordFailed     = "Error occurred while updating password. Please try again later."
	msgInvalidEmail       = "Invalid email address provided, please provide correct email address and try again."
	msgSameEmail          = "The email address provided is your current email address."
	msgEmailChangedFmt    = "Email address successfully modified to %s. Check the email address for verification mail"
	msgEmailFailed        = "Error occurred while updating email address. Please try again later."
	msgNoPermission       = "You don't have permission to perform this action."
	msgBalanceIncomplete  = "Incomplete information provided. Please provide Email address and Amount."
	msgBalanceUpdatedFmt  = "Balance for user. %s has been modified successfully."
	msgBalanceFailed      = "Error occurred while updating balance. Please try again later."
	msgStatusIncomplete   = "Incomplete information provided. Please provide Email address and Status and TransactionID."
	msgNoUserFound        = "No user found with the given email address."
	msgNoTransactionFound = "No transaction found with the given info. Please confirm the Email Address and Transaction ID and try again"
	msgStatusUpdated      = "Transaction status has been modified successfully"
	msgStatusUpdateFailed = "Error occurred while updating transaction status. Please try again later."
)

// Operation names used for metrics.
const (
	opGetUserInfo             = "get_user_info"
	opChangePassword          = "change_password"
	opChangeEmail             = "change_email"
	opUpdateBalance           = "update_balance"
	opUpdateTransactionStatus = "update_transaction_status"
)

// WalletCommander defines the write-side operations used by WalletHandler.
type WalletCommander interface {
	ChangePassword(context.Context, cqrs.ChangePasswordCommand) error
	ChangeEmail(context.Context, cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error)
	UpdateBalance(context.Context, cqrs.UpdateBalanceCommand) error
	UpdateTransactionStatus(context.Context, cqrs.UpdateTransactionStatusCommand) error
}

// WalletQuerier defines the read-side operations used by WalletHandler.
type WalletQuerier interface {
	GetUserInfo(context.Context, cqrs.GetUserInfoQuery) (*models.ProfileView, error)
}

type OperationRecorder interface {
	RecordOperation(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string) {}

// WalletHandler routes requests to the command or query service as appropriate.
type WalletHandler struct {
	commands WalletCommander
	queries  WalletQuerier
	recorder OperationRecorder
	logger   *zap.Logger
}

func NewWalletHandler(commands WalletCommander, queries WalletQuerier, recorder OperationRecorder, logger *zap.Logger) *WalletHandler {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletHandler{commands: commands, queries: queries, recorder: recorder, logger: logger}
}

// RegisterRoutes mounts the wallet endpoints on rg.
func (h *WalletHandler) RegisterRoutes(rg gin.IRouter) {
	rg.POST("/user-info", h.GetUserInfo)
	rg.PATCH("/password", h.ChangePassword)
	rg.PATCH("/email", h.ChangeEmail)

	admin := rg.Group("/admin")
	admin.PATCH("/balance", h.UpdateBalance)
	admin.PATCH("/transaction-status", h.UpdateTransactionStatus)
}

func (h *WalletHandler) GetUserInfo(c *gin.Context) {
	var req GetUserInfoRequest
	bindBody(c, &req)

	view, err := h.queries.GetUserInfo(c.Request.Context(), cqrs.GetUserInfoQuery{
		OwnerID: callerID(c, string(req.OwnerID)),
	})
	if err != nil {
		h.recorder.RecordOperation(opGetUserInfo, outcomeOf(err))
		middleware.AbortWithOperationalError(c, msgFetchFailed, err)
		return
	}

	h.recorder.RecordOperation(opGetUserInfo, "success")
	c.JSON(http.StatusOK, view)
}

func (h *WalletHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	bindBody(c, &req)

	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		h.reject(c, opChangePassword, msgPasswordTooShort, validationErrors)
		return
	}

	err := h.commands.ChangePassword(c.Request.Context(), cqrs.ChangePasswordCommand{
		OwnerID:     callerID(c, string(req.OwnerID)),
		NewPassword: string(req.NewPassword),
	})
	if err != nil {
		h.recorder.RecordOperation(opChangePassword, outcomeOf(err))
		middleware.AbortWithOperationalError(c, msgPasswordFailed, err)
		return
	}

	h.recorder.RecordOperation(opChangePassword, "success")
	c.JSON(http.StatusCreated, MessageResponse{Message: msgPasswordChanged})
}

func (h *WalletHandler) ChangeEmail(c *gin.Context) {
	var req ChangeEmailRequest
	bindBody(c, &req)

	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		h.reject(c, opChangeEmail, msgInvalidEmail, validationErrors)
		return
	}

	result, err := h.commands.ChangeEmail(c.Request.Context(), cqrs.ChangeEmailCommand{
		OwnerID:         callerID(c, string(req.OwnerID)),
		NewEmailAddress: string(req.NewEmailAddress),
	})
	if err != nil {
		h.recorder.RecordOperation(opChangeEmail, outcomeOf(err))
		middleware.AbortWithOperationalError(c, msgEmailFailed, err)
		return
	}
	if !result.Changed {
		h.recorder.RecordOperation(opChangeEmail, "unchanged")
		c.JSON(http.StatusOK, MessageResponse{Message: msgSameEmail})
		return
	}

	h.recorder.RecordOperation(opChangeEmail, "success")
	c.JSON(http.StatusCreated, MessageResponse{Message: fmt.Sprintf(msgEmailChangedFmt, result.EmailAddress)})
}

// UpdateBalance checks the caller reference before the other fields, so an
// anonymous request is told it lacks permission rather than information.
func (h *WalletHandler) UpdateBalance(c *gin.Context) {
	var req UpdateBalanceRequest
	bindBody(c, &req)

	ownerID := callerID(c, string(req.OwnerID))
	if ownerID == "" {
		h.recorder.RecordOperation(opUpdateBalance, "unauthorized")
		middleware.RespondWithError(c, http.StatusUnauthorized, msgNoPermission)
		return
	}
	validationErrors := middleware.ValidateRequest(req)
	if !req.Amount.Supplied {
		validationErrors = append(validationErrors, middleware.ValidationError{
			Field: "Amount", Message: "This field is required", Type: "required",
		})
	}
	if validationErrors != nil {
		h.reject(c, opUpdateBalance, msgBalanceIncomplete, validationErrors)
		return
	}

	err := h.commands.UpdateBalance(c.Request.Context(), cqrs.UpdateBalanceCommand{
		RequestingOwnerID: ownerID,
		EmailAddress:      string(req.EmailAddress),
		Amount:            req.Amount.Text,
	})
	switch {
	case err == nil:
		h.recorder.RecordOperation(opUpdateBalance, "success")
		c.JSON(http.StatusCreated, MessageResponse{Message: fmt.Sprintf(msgBalanceUpdatedFmt, req.EmailAddress)})
	case errors.Is(err, apperrors.ErrUnauthorized):
		h.recorder.RecordOperation(opUpdateBalance, "unauthorized")
		middleware.RespondWithError(c, http.StatusUnauthorized, msgNoPermission)
	default:
		// Unknown target or account is an operational failure here, unlike
		// the transaction status update.
		h.recorder.RecordOperation(opUpdateBalance, outcomeOf(err))
		middleware.AbortWithOperationalError(c, msgBalanceFailed, err)
	}
}

func (h *WalletHandler) UpdateTransactionStatus(c *gin.Context) {
	var req UpdateTransactionStatusRequest
	bindBody(c, &req)

	req.OwnerID = LooseString(callerID(c, string(req.OwnerID)))
	if req.OwnerID == "" {
		h.recorder.RecordOperation(opUpdateTransactionStatus, "unauthorized")
		middleware.RespondWithError(c, http.StatusUnauthorized, msgNoPermission)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		h.reject(c, opUpdateTransactionStatus, msgStatusIncomplete, validationErrors)
		return
	}

	err := h.commands.UpdateTransactionStatus(c.Request.Context(), cqrs.UpdateTransactionStatusCommand{
		RequestingOwnerID: string(req.OwnerID),
		EmailAddress:      string(req.EmailAddress),
		TransactionID:     string(req.TransactionID),
		Status:            string(req.Status),
	})
	switch {
	case err == nil:
		h.recorder.RecordOperation(opUpdateTransactionStatus, "success")
		c.JSON(http.StatusCreated, MessageResponse{Message: msgStatusUpdated})
	case errors.Is(err, apperrors.ErrUnauthorized):
		h.recorder.RecordOperation(opUpdateTransactionStatus, "unauthorized")
		middleware.RespondWithError(c, http.StatusUnauthorized, msgNoPermission)
	case errors.Is(err, apperrors.ErrTargetNotFound):
		h.recorder.RecordOperation(opUpdateTransactionStatus, "not_found")
		c.JSON(http.StatusOK, MessageResponse{Message: msgNoUserFound})
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		h.recorder.RecordOperation(opUpdateTransactionStatus, "not_found")
		c.JSON(http.StatusOK, MessageResponse{Message: msgNoTransactionFound})
	default:
		h.recorder.RecordOperation(opUpdateTransactionStatus, outcomeOf(err))
		middleware.AbortWithOperationalError(c, msgStatusUpdateFailed, err)
	}
}

// reject answers a request that failed its field checks with 401 and message.
// The per-field details are only logged.
func (h *WalletHandler) reject(c *gin.Context, operation, message string, validationErrors []middleware.ValidationError) {
	h.recorder.RecordOperation(operation, "validation")
	h.logger.Debug("request rejected",
		zap.String("operation", operation),
		zap.Any("fields", validationErrors),
	)
	middleware.RespondWithError(c, http.StatusUnauthorized, message)
}

// bindBody decodes the JSON body into req. Mistyped fields are coerced by
// LooseString and JSONAmount; a body that is not a JSON object at all is
// treated as empty so that the per-operation field checks decide the response.
func bindBody(c *gin.Context, req any) {
	if c.Request.ContentLength == 0 {
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		resetBody(req)
	}
}

func resetBody(req any) {
	switch r := req.(type) {
	case *GetUserInfoRequest:
		*r = GetUserInfoRequest{}
	case *ChangePasswordRequest:
		*r = ChangePasswordRequest{}
	case *ChangeEmailRequest:
		*r = ChangeEmailRequest{}
	case *UpdateBalanceRequest:
		*r = UpdateBalanceRequest{}
	case *UpdateTransactionStatusRequest:
		*r = UpdateTransactionStatusRequest{}
	}
}

// callerID prefers the identity proven by a verified bearer token over the
// ownerID carried in the body.
func callerID(c *gin.Context, bodyOwnerID string) string {
	if id, ok := middleware.GetUserID(c); ok {
		return id
	}
	return bodyOwnerID
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
