package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/service"
	"inventory-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const roleKey = "role"

// Handler contains HTTP handlers
type Handler struct {
	products     *service.ProductService
	reservations *service.ReservationService
	staff        *service.StaffService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	reservations *service.ReservationService,
	staff *service.StaffService,
) *Handler {
	return &Handler{
		products:     products,
		reservations: reservations,
		staff:        staff,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(roleMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.PATCH("/products/:id/quantity", h.adjustQuantity)

		v1.POST("/cart", h.addToCart)
		v1.GET("/cart/:id", h.getCartEntry)
		v1.POST("/cart/:productId/cancel", h.cancelReservation)

		v1.GET("/reports/inventory", h.inventoryReport)
		v1.GET("/reports/dashboard", h.dashboardReport)
		v1.GET("/statuses", h.listStatuses)

		v1.GET("/staff", h.listStaff)
		v1.GET("/staff/:id", h.getStaff)
		v1.POST("/staff", h.createStaff)
		v1.PUT("/staff/:id", h.updateStaff)
		v1.DELETE("/staff/:id", h.deleteStaff)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns the product listing (admin/manajer only)
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns a single product by ID
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// createProduct handles product creation with an optional image upload
func (h *Handler) createProduct(c *gin.Context) {
	input, image, ok := bindProductForm(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	product, err := h.products.Create(c.Request.Context(), input, readerOrNil(image))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "product created",
		"product": product,
	})
}

// updateProduct handles a full-field product replace, with optional image
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	input, image, ok := bindProductForm(c)
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
	}

	product, err := h.products.Update(c.Request.Context(), id, input, readerOrNil(image))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "product updated",
		"product": product,
	})
}

// deleteProduct removes a product and its stored image
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "product deleted"})
}

// adjustQuantityRequest is a relative stock adjustment
type adjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// adjustQuantity applies an administrative stock adjustment
func (h *Handler) adjustQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.reservations.AdjustQuantity(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "quantity updated",
		"product": product,
	})
}

// addToCart reserves stock for a product
func (h *Handler) addToCart(c *gin.Context) {
	var req service.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.reservations.Reserve(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        "product reserved",
		"reservation_id": resp.ReservationID,
		"product":        resp.Product,
	})
}

// getCartEntry returns a reservation together with its product
func (h *Handler) getCartEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, product, err := h.reservations.GetCartEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservation": reservation,
		"product":     product,
	})
}

// cancelReservation restores stock from the product's oldest reservation.
// A product with no reservation still reports success.
func (h *Handler) cancelReservation(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	resp, err := h.reservations.CancelByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "stock restored",
		"released": resp.Released,
		"product":  resp.Product,
	})
}

// inventoryReport returns status/expiry counts (admin/manajer only)
func (h *Handler) inventoryReport(c *gin.Context) {
	summary, err := h.products.InventorySummary(c.Request.Context(), callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// dashboardReport returns quantity/expiry counts
func (h *Handler) dashboardReport(c *gin.Context) {
	summary, err := h.products.DashboardSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listStatuses returns the status lookup table
func (h *Handler) listStatuses(c *gin.Context) {
	statuses, err := h.products.Statuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// listStaff returns the staff roster (admin only)
func (h *Handler) listStaff(c *gin.Context) {
	staffs, err := h.staff.List(c.Request.Context(), callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staffs})
}

// getStaff returns a single staff record
func (h *Handler) getStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.staff.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// createStaff adds a staff record
func (h *Handler) createStaff(c *gin.Context) {
	var input service.StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	staff, err := h.staff.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "staff created",
		"staff":  staff,
	})
}

// updateStaff replaces a staff record
func (h *Handler) updateStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input service.StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	staff, err := h.staff.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "staff updated",
		"staff":  staff,
	})
}

// deleteStaff removes a staff record
func (h *Handler) deleteStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.staff.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "staff deleted"})
}

// respondError maps service errors onto the HTTP taxonomy
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Not enough stock available",
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
