package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	reconciliationapp "github.com/erp/reconciler/internal/application/reconciliation"
	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ExpenseIntegrator is the application service behind the reconciliation endpoints
type ExpenseIntegrator interface {
	Integrate(ctx context.Context, req *reconciliationapp.IntegrationRequest) (*reconciliationapp.IntegrationResponse, error)
	Classify(ctx context.Context, category, subcategory string) reconciliationapp.ClassificationResult
}

// ReconciliationHandler exposes expense integration over HTTP
type ReconciliationHandler struct {
	BaseHandler
	service ExpenseIntegrator
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service ExpenseIntegrator) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// IntegrateExpense posts an expense into its subsidiary ledger.
//
// A completed integration answers 200. One that wrote its primary ledger entry
// but did not complete answers with the status of its error code and still
// carries the integration body, so callers can see what was written.
func (h *ReconciliationHandler) IntegrateExpense(c *gin.Context) {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID format")
		return
	}

	var req IntegrateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.HandleValidationError(c, verrs)
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		middleware.HandleValidationError(c, nil, dto.ValidationDetail{Field: "date", Message: "Must be YYYY-MM-DD or RFC 3339"})
		return
	}

	appReq := &reconciliationapp.IntegrationRequest{
		ExpenseID:       expenseID,
		Amount:          req.Amount,
		Date:            date,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		BankAccountID:   req.BankAccountID,
		EntityType:      reconciliation.EntityType(req.EntityType),
		EntityID:        req.EntityID,
		PaymentKind:     reconciliation.PaymentKind(req.PaymentKind),
		SupplierID:      req.SupplierID,
		VendorBillID:    req.VendorBillID,
		Notes:           req.Notes,
		EmployeeID:      req.EmployeeID,
		PayrollRecordID: req.PayrollRecordID,
		TruckID:         req.TruckID,
		Odometer:        req.Odometer,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Location:        req.Location,
		VendorName:      req.VendorName,
		ReceiptNumber:   req.ReceiptNumber,
	}
	if req.CreatedBy != nil {
		appReq.CreatedBy = *req.CreatedBy
	} else if userID, err := getUserID(c); err == nil {
		appReq.CreatedBy = userID
	}

	resp, err := h.service.Integrate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !resp.Success {
		code := dto.NormalizeErrorCode(resp.ErrorCode)
		c.JSON(dto.GetHTTPStatus(code), dto.Response{
			Success: false,
			Data:    resp,
			Error: &dto.ErrorInfo{
				Code:      code,
				Message:   resp.Error,
				RequestID: getRequestID(c),
				Timestamp: time.Now().UTC(),
			},
		})
		return
	}

	h.Success(c, resp)
}

// ClassifyExpense previews where an expense with the given category would be posted
func (h *ReconciliationHandler) ClassifyExpense(c *gin.Context) {
	var q ClassificationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.HandleValidationError(c, verrs)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	h.Success(c, h.service.Classify(c.Request.Context(), q.Category, q.Subcategory))
}

// RegisterRoutes mounts the reconciliation endpoints under /finance/expenses
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/finance/expenses")
	expenses.GET("/classification", h.ClassifyExpense)
	expenses.POST("/:id/integrations", h.IntegrateExpense)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
