package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/transfers"
	"stocktrack/internal/infrastructure/http/v1/dto"
	"stocktrack/internal/infrastructure/storage/postgres"
	"stocktrack/pkg/logger"
)

const transferEntityType = "transfer"

// TransfersHandler provides HTTP handlers for the transfer workflow.
type TransfersHandler struct {
	*BaseHandler
	service *transfers.Service
	audit   *postgres.AuditService
	log     *logger.Logger
}

// NewTransfersHandler creates a new transfers handler.
func NewTransfersHandler(
	base *BaseHandler,
	service *transfers.Service,
	audit *postgres.AuditService,
	log *logger.Logger,
) *TransfersHandler {
	return &TransfersHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
		log:         log,
	}
}

// Create handles POST /transfers - create a pending transfer, decrementing
// the source warehouse immediately.
func (h *TransfersHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sourceID, err := id.Parse(req.SourceWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid sourceWarehouseId format"))
		return
	}

	targetID, err := id.Parse(req.TargetWarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid targetWarehouseId format"))
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	transfer, err := h.service.Create(ctx, sourceID, targetID, productID, types.NewQuantity(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, transfer, postgres.AuditActionCreate)

	c.JSON(http.StatusCreated, dto.FromTransfer(transfer))
}

// Get handles GET /transfers/:id.
func (h *TransfersHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	transferID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	transfer, err := h.service.GetByID(ctx, transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTransfer(transfer))
}

// List handles GET /transfers with status and dimension filters.
func (h *TransfersHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := transfers.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if s := c.Query("status"); s != "" {
		status := transfers.Status(s)
		filter.Status = &status
	}

	if s := c.Query("productId"); s != "" {
		productID, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &productID
	}

	if s := c.Query("warehouseId"); s != "" {
		warehouseID, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &warehouseID
	}

	if s := c.Query("from"); s != "" {
		from, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected"))
			return
		}
		filter.FromDate = &from
	}

	if s := c.Query("to"); s != "" {
		to, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected"))
			return
		}
		filter.ToDate = &to
	}

	items, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromTransfers(items),
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Approve handles POST /transfers/:id/approve - increment the target
// warehouse with blended cost and finalise the transfer.
func (h *TransfersHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	transferID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	transfer, err := h.service.Approve(ctx, transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, transfer, postgres.AuditActionApprove)

	h.OK(c, dto.FromTransfer(transfer))
}

// Cancel handles POST /transfers/:id/cancel - restore the source warehouse
// and finalise the transfer.
func (h *TransfersHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	transferID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	transfer, err := h.service.Cancel(ctx, transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, transfer, postgres.AuditActionCancel)

	h.OK(c, dto.FromTransfer(transfer))
}

// logAudit records the lifecycle event, best effort. The state change
// itself already committed; an audit write failure must not fail the request.
func (h *TransfersHandler) logAudit(ctx context.Context, t *transfers.Transfer, action postgres.AuditAction) {
	if h.audit == nil {
		return
	}

	err := h.audit.LogChange(ctx, transferEntityType, t.ID, action, map[string]any{
		"number":            t.Number,
		"status":            string(t.Status),
		"sourceWarehouseId": t.SourceWarehouseID.String(),
		"targetWarehouseId": t.TargetWarehouseID.String(),
		"productId":         t.ProductID.String(),
		"quantity":          t.Quantity.Int64(),
	})
	if err != nil {
		h.log.WithContext(ctx).Warnw("audit log write failed",
			"entity_type", transferEntityType,
			"entity_id", t.ID.String(),
			"action", string(action),
			"error", err,
		)
	}
}
