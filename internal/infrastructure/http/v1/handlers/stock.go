package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/infrastructure/http/v1/dto"
)

// StockHandler provides HTTP handlers for the stock ledger: adjustments,
// positions, movement history, valuation and reconciliation.
type StockHandler struct {
	*BaseHandler
	ledger *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, ledgerService *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		ledger:      ledgerService,
	}
}

// ApplyMovement handles POST /stock/movements - apply a single-warehouse
// adjustment (receiving, return or shrinkage).
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ApplyMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	adj, err := req.ToAdjustment()
	if err != nil {
		h.Error(c, err)
		return
	}

	position, err := h.ledger.Apply(ctx, productID, warehouseID, adj)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPosition(position))
}

// GetPositions handles GET /stock/positions - positions in a warehouse,
// or a single position when productId is also given.
func (h *StockHandler) GetPositions(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Query("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("warehouseId is required"))
		return
	}

	if productStr := c.Query("productId"); productStr != "" {
		productID, err := id.Parse(productStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}

		position, err := h.ledger.GetPosition(ctx, productID, warehouseID)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.FromPosition(position))
		return
	}

	positions, err := h.ledger.GetWarehouseStock(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromPositions(positions),
		TotalCount: int64(len(positions)),
	})
}

// GetAvailability handles GET /stock/availability/:productId - total
// quantity across all warehouses.
func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	total, err := h.ledger.GetProductAvailability(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Available: total.Int64(),
	})
}

// GetLedger handles GET /stock/ledger - movement history with filters.
func (h *StockHandler) GetLedger(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.LogFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
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

	if s := c.Query("processType"); s != "" {
		pt := ledger.ProcessType(s)
		filter.ProcessType = &pt
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

	entries, err := h.ledger.GetHistory(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromLogEntries(entries),
		TotalCount: int64(len(entries)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// GetValuation handles GET /stock/valuation - quantity x average cost
// per position in a warehouse.
func (h *StockHandler) GetValuation(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Query("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("warehouseId is required"))
		return
	}

	rows, err := h.ledger.GetValuation(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromValuationRows(rows),
		TotalCount: int64(len(rows)),
	})
}

// Reconcile handles POST /stock/reconcile - verify that the movement log
// sums to the position quantity for a pair.
func (h *StockHandler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Query("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}

	warehouseID, err := id.Parse(c.Query("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("warehouseId is required"))
		return
	}

	if err := h.ledger.Reconcile(ctx, productID, warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "ledger is consistent")
}
