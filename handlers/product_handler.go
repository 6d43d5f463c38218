package handlers

import (
	"strconv"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db}
}

// CreateProductRequest
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// CreateProduct - POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Name == "" {
		return errs.Validation("name is required")
	}
	if req.Price < 0 {
		return errs.Validation("price must not be negative")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return errs.Internal("could not create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// GetAllProducts - GET /api/products
// Paginated listing with optional name search.
func (h *ProductHandler) GetAllProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.DB.Model(&models.Product{})

	// Search by name
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return errs.Internal("could not count products", err)
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error; err != nil {
		return errs.Internal("could not fetch products", err)
	}

	meta := models.NewPaginationMeta(page, limit, total)
	return c.JSON(models.SuccessResponse("Products retrieved successfully", products, meta))
}

func (h *ProductHandler) findProduct(c *fiber.Ctx) (*models.Product, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, errs.Validation("invalid product id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return nil, errs.NotFound("product not found")
	}
	return &product, nil
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}

	if err := h.DB.Save(product).Error; err != nil {
		return errs.Internal("could not update product", err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DeleteProduct - DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(product).Error; err != nil {
		return errs.Internal("could not delete product", err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
