package handler

import (
	"school-points-backend/internal/adapter/http/dto"
	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"
	"school-points-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StoreHandler handles the points store endpoints.
type StoreHandler struct {
	storeSvc ports.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(storeSvc ports.StoreService) *StoreHandler {
	return &StoreHandler{storeSvc: storeSvc}
}

// ListProducts handles GET /api/v1/products.
func (h *StoreHandler) ListProducts(c *gin.Context) {
	products, err := h.storeSvc.ListProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	response.OK(c, gin.H{"products": out})
}

// GetProduct handles GET /api/v1/products/:id.
func (h *StoreHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid product id"))
		return
	}

	product, err := h.storeSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toProductResponse(product))
}

// Checkout handles POST /api/v1/orders.
func (h *StoreHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	items := make([]ports.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.Error(c, apperror.Validation("Invalid product id"))
			return
		}
		items = append(items, ports.CheckoutItem{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.storeSvc.Checkout(c.Request.Context(), ports.CheckoutRequest{
		AccountID: accountID(c),
		Items:     items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toOrderResponse(order))
}

// ListOrders handles GET /api/v1/orders.
func (h *StoreHandler) ListOrders(c *gin.Context) {
	orders, err := h.storeSvc.ListOrders(c.Request.Context(), accountID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	response.OK(c, gin.H{"orders": out})
}

func toProductResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		PriceInPoints: p.PricePoints,
		Stock:         p.Stock,
	}
}

func toOrderResponse(o *domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PointsSpent: item.PointsSpent,
		})
	}
	return dto.OrderResponse{
		ID:          o.ID.String(),
		Status:      string(o.Status),
		TotalPoints: o.TotalPoints,
		Items:       items,
		CreatedAt:   o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
