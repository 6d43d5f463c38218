package handlers

import (
	"strconv"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BookHandler struct {
	DB *gorm.DB
}

func NewBookHandler(db *gorm.DB) *BookHandler {
	return &BookHandler{DB: db}
}

// ListBooks - GET /api/books
// Only books published in 2020 or later are listed.
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	var books []models.Book
	if err := h.DB.Where("publish >= ?", "2020-01-01").Find(&books).Error; err != nil {
		return errs.Internal("could not fetch books", err)
	}

	return c.JSON(fiber.Map{
		"status":      "success",
		"total_books": len(books),
		"books":       books,
	})
}

// CreateBook - POST /api/books
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		return errs.Validation("invalid input")
	}
	if book.Publish.IsZero() {
		return errs.Validation("publish date is required")
	}

	if err := h.DB.Create(&book).Error; err != nil {
		return errs.Internal("could not create book", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "created",
		"book":   book,
	})
}

func (h *BookHandler) findBook(c *fiber.Ctx) (*models.Book, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, errs.Validation("invalid book id")
	}

	var book models.Book
	if err := h.DB.First(&book, id).Error; err != nil {
		return nil, errs.NotFound("book not found")
	}
	return &book, nil
}

// GetBook - GET /api/books/:id
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.findBook(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "book": book})
}

// UpdateBook - PUT/PATCH /api/books/:id
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	book, err := h.findBook(c)
	if err != nil {
		return err
	}

	var req models.Book
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}

	if req.Title != "" {
		book.Title = req.Title
	}
	if req.Author != "" {
		book.Author = req.Author
	}
	if !req.Publish.IsZero() {
		book.Publish = req.Publish
	}

	if err := h.DB.Save(book).Error; err != nil {
		return errs.Internal("could not update book", err)
	}
	return c.JSON(fiber.Map{"status": "updated", "book": book})
}

// DeleteBook - DELETE /api/books/:id
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	book, err := h.findBook(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(book).Error; err != nil {
		return errs.Internal("could not delete book", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
