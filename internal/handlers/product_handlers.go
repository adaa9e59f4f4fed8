package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/services"
)

type ProductHandlers struct {
	productService services.ProductService
	mediaService   services.MediaService
}

func NewProductHandlers(productService services.ProductService, mediaService services.MediaService) *ProductHandlers {
	return &ProductHandlers{productService: productService, mediaService: mediaService}
}

func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var input services.CreateProductInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	product, err := h.productService.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) GetProduct(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	product, err := h.productService.GetByID(c.Request().Context(), tenantID, productID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) ListProducts(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	filter := models.ProductSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     queryInt(c, "limit", 50),
		Offset:    queryInt(c, "offset", 0),
	}
	if raw := c.QueryParam("shop_id"); raw != "" {
		shopID, err := common.ValidateUUID(raw, "shop_id")
		if err != nil {
			return common.SendValidationError(c, "shop_id", err.Error())
		}
		filter.ShopID = &shopID
	}
	if category := c.QueryParam("category"); category != "" {
		filter.Category = &category
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}

	products, total, err := h.productService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return handleServiceError(c, err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.CreateProductInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	product, err := h.productService.Update(c.Request().Context(), tenantID, productID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.productService.Delete(c.Request().Context(), tenantID, productID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustInventory applies a set / add / subtract stock correction.
func (h *ProductHandlers) AdjustInventory(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var adj services.InventoryAdjustment
	if err := c.Bind(&adj); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	inventory, err := h.productService.AdjustInventory(c.Request().Context(), tenantID, productID, adj)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"inventory":  inventory,
	})
}

const maxImageSize = 10 << 20 // 10 MiB

// UploadImage stores a product image in object storage and appends its URL
// to the product's gallery.
func (h *ProductHandlers) UploadImage(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "image file is required")
	}
	if file.Size > maxImageSize {
		return common.SendValidationError(c, "image", "image exceeds the 10MB limit")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "failed to read upload")
	}
	defer src.Close()

	objectName := fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")

	ctx := c.Request().Context()
	if err := h.mediaService.Upload(ctx, objectName, contentType, src, file.Size); err != nil {
		return common.SendServerError(c, "failed to store image")
	}

	url, err := h.mediaService.PresignedURL(objectName, 7*24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "failed to generate image URL")
	}

	if err := h.productService.AttachImage(ctx, tenantID, productID, url); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"object": objectName,
		"url":    url,
	})
}
