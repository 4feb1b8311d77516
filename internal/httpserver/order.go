package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.Svc.PlaceOrder(ctx, actorFrom(c), service.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
	})
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID.String())
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "checkout_error", "invalid body", err)
	}

	order, err := h.Svc.Checkout(ctx, actorFrom(c), req.ShippingAddress)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", order.ID.String())
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, actorFrom(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListMyOrders(ctx, actorFrom(c), offset, limit)
	if err != nil {
		return fail(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: orders, Meta: util.Meta(page, limit, total)})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order_error", "id is not a uuid", err)
	}

	order, err := h.Svc.CancelOrder(ctx, actorFrom(c), id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", id.String())
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) AllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_all")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListAllOrders(ctx, actorFrom(c), c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "all_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: orders, Meta: util.Meta(page, limit, total)})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", "id is not a uuid", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, actorFrom(c), id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id.String(), "status", string(order.Status))
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Statistics(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.statistics")

	stats, err := h.Svc.Statistics(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "statistics_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}
