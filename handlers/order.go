package handlers

import (
	"log/slog"

	"fleet-charging/database"
	"fleet-charging/handlers/base"

	"github.com/labstack/echo/v4"
)

// OrderHandler exposes the charging order history. Orders are opened and
// closed only by the fleet state machine, so this surface is read-only.
type OrderHandler struct {
	db     *database.Database
	logger *slog.Logger
}

func NewOrderHandler(db *database.Database, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		db:     db,
		logger: logger.With("component", "order_handler"),
	}
}

// ListOrders retrieves all charging orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.db.OrderRepo.List()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, orders)
}

// GetOrder retrieves a single charging order.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := base.ExtractIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.db.OrderRepo.GetByID(id)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendGetResponse(c, order)
}
