package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_error", "id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, limit, total)})
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, limit, total)})
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "categories_error", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	product, err := h.Svc.CreateProduct(ctx, actorFrom(c), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID.String())
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch_error", "id is not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "product_patch_error", "invalid body", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, actorFrom(c), id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id.String())
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete_error", "id is not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, actorFrom(c), id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id.String())
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.adjust_stock")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "adjust_stock_error", "id is not a uuid", err)
	}

	var req transport.StockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "adjust_stock_error", "invalid body", err)
	}

	product, err := h.Svc.AdjustStock(ctx, actorFrom(c), id, req.Quantity, service.StockOperation(req.Operation))
	if err != nil {
		return fail(l, "adjust_stock_error", err)
	}

	l.Info("adjust_stock_success", "product_id", id.String(), "stock", product.Stock)
	return c.JSON(http.StatusOK, product)
}
