package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.GetCart(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.summary")

	summary, err := h.Svc.Summary(ctx, actorFrom(c))
	if err != nil {
		return fail(l, "cart_summary_error", err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "add_cart_item_error", "invalid body", err)
	}

	item, err := h.Svc.AddToCart(ctx, actorFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_cart_item_error", err)
	}

	l.Info("add_cart_item_success", "item_id", item.ID.String())
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	itemID, err := parseID(c, "itemId")
	if err != nil {
		return badRequest(l, "update_cart_item_error", "item id is not a uuid", err)
	}

	var req transport.UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "update_cart_item_error", "invalid body", err)
	}

	item, err := h.Svc.UpdateItem(ctx, actorFrom(c), itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	itemID, err := parseID(c, "itemId")
	if err != nil {
		return badRequest(l, "remove_cart_item_error", "item id is not a uuid", err)
	}
	if err := h.Svc.RemoveItem(ctx, actorFrom(c), itemID); err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.ClearCart(ctx, actorFrom(c)); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
