package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/sales"
	"stocktrack/internal/infrastructure/http/v1/dto"
)

// SalesHandler provides HTTP handlers for sale consumption.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales - consume stock for all lines atomically.
func (h *SalesHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	lines, err := req.ToLineRequests()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Consume(ctx, warehouseID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSale(sale))
}

// Get handles GET /sales/:id - sale with lines.
func (h *SalesHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sale, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// List handles GET /sales - sale headers, newest first.
func (h *SalesHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := sales.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
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
		Items:      dto.FromSales(items),
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
