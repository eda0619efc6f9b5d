package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler exposes the catalog procedures over HTTP.
type ProductHandler struct {
	query    *services.ProductQueryService
	products *services.ProductService
	images   *services.ImageService
	log      *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(
	query *services.ProductQueryService,
	products *services.ProductService,
	images *services.ImageService,
	log *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		query:    query,
		products: products,
		images:   images,
		log:      log,
	}
}

// RegisterRoutes registers the product procedures. authRequired guards the admin procedures.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/product.list", h.HandleList)
	router.Get("/product.getById", h.HandleGetByID)
	router.Get("/product.getBySlug", h.HandleGetBySlug)
	router.Get("/product.getCategories", h.HandleGetCategories)

	router.Get("/product.adminList", authRequired, h.HandleAdminList)
	router.Post("/product.create", authRequired, h.HandleCreate)
	router.Post("/product.update", authRequired, h.HandleUpdate)
	router.Post("/product.delete", authRequired, h.HandleDelete)
	router.Post("/product.addImage", authRequired, h.HandleAddImage)
	router.Post("/product.updateImage", authRequired, h.HandleUpdateImage)
	router.Post("/product.deleteImage", authRequired, h.HandleDeleteImage)
}

type idRequest struct {
	ID string `json:"id" query:"id"`
}

// HandleList returns one page of products.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	var in services.ListProductsInput
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c, err)
	}
	page, err := h.query.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

// HandleAdminList returns one page of products with at most one image each.
func (h *ProductHandler) HandleAdminList(c *fiber.Ctx) error {
	var in services.ListProductsInput
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c, err)
	}
	page, err := h.query.AdminList(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

// HandleGetByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return missingField(c, "id")
	}
	product, err := h.query.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleGetBySlug retrieves a single product by its slug.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	slug := c.Query("slug")
	if slug == "" {
		return missingField(c, "slug")
	}
	product, err := h.query.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleGetCategories lists every category.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.query.GetCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

// HandleCreate creates a product from the admin form.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.products.CreateProduct(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate rewrites a product from the admin form.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdateProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.products.UpdateProduct(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleDelete deletes a product and its images.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	var req idRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.ID == "" {
		return missingField(c, "id")
	}
	if err := h.products.DeleteProduct(c.UserContext(), middleware.CallerFrom(c), req.ID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleAddImage attaches an image to a product.
func (h *ProductHandler) HandleAddImage(c *fiber.Ctx) error {
	var in services.AddImageInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	image, err := h.images.AddImage(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// HandleUpdateImage patches an image.
func (h *ProductHandler) HandleUpdateImage(c *fiber.Ctx) error {
	var in services.UpdateImageInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	image, err := h.images.UpdateImage(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(image)
}

// HandleDeleteImage removes an image.
func (h *ProductHandler) HandleDeleteImage(c *fiber.Ctx) error {
	var req idRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.ID == "" {
		return missingField(c, "id")
	}
	if err := h.images.DeleteImage(c.UserContext(), middleware.CallerFrom(c), req.ID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
