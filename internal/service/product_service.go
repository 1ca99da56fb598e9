package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"inventory-service/config"
	"inventory-service/internal/imagestore"
	"inventory-service/internal/models"
	"inventory-service/internal/report"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productCacheTTL = 5 * time.Minute

// productStore is the persistence surface product administration needs
type productStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetStatuses(ctx context.Context) ([]models.Status, error)
}

// ProductService handles product administration and reporting
type ProductService struct {
	store    productStore
	cache    Cache
	events   EventPublisher
	images   *imagestore.Store
	business config.BusinessConfig
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	store productStore,
	cache Cache,
	events EventPublisher,
	images *imagestore.Store,
	business config.BusinessConfig,
) *ProductService {
	return &ProductService{
		store:    store,
		cache:    cache,
		events:   events,
		images:   images,
		business: business,
		logger:   util.GetLogger(),
	}
}

// ProductInput carries the full field set for create and full-replace update
type ProductInput struct {
	Name      string  `form:"name"`
	Quantity  int     `form:"quantity"`
	Price     float64 `form:"price"`
	Unit      string  `form:"unit"`
	ExpiresAt string  `form:"expires_at"`
}

// List returns the full product listing. Only admin and manajer roles may
// view it; any other role gets a not-found, not a forbidden.
func (s *ProductService) List(ctx context.Context, role string) ([]models.Product, error) {
	if !canViewInventory(role) {
		return nil, fmt.Errorf("listing for role %q: %w", role, store.ErrNotFound)
	}
	return s.store.GetProducts(ctx)
}

// Get returns a single product, read through the cache
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedProduct(ctx, id)
		if err != nil {
			s.logger.Warn("Product cache lookup failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, product, productCacheTTL); err != nil {
			s.logger.Warn("Failed to cache product", zap.Error(err))
		}
	}
	return product, nil
}

// Create validates the input, stores the optional image, and inserts the
// product. The availability status is derived from the initial quantity.
func (s *ProductService) Create(ctx context.Context, input *ProductInput, image io.Reader) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	expiresAt, verr := validateProductInput(input)
	if verr != nil {
		return nil, verr
	}

	product := &models.Product{
		Name:      input.Name,
		Quantity:  input.Quantity,
		Price:     input.Price,
		Unit:      input.Unit,
		ExpiresAt: expiresAt,
		Status:    models.StatusForQuantity(input.Quantity, s.business.LowStockThreshold),
	}

	if image != nil {
		filename, err := s.images.Save(input.Name, image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		product.Image = &filename
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		if product.Image != nil {
			_ = s.images.Remove(*product.Image)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))

	s.invalidateReports(ctx)
	s.publishLifecycle(ctx, models.EventTypeProductCreated, product)
	return product, nil
}

// Update replaces all product fields. A new image replaces the stored one and
// the previous file is removed.
func (s *ProductService) Update(ctx context.Context, id int64, input *ProductInput, image io.Reader) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	expiresAt, verr := validateProductInput(input)
	if verr != nil {
		return nil, verr
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Quantity = input.Quantity
	product.Price = input.Price
	product.Unit = input.Unit
	product.ExpiresAt = expiresAt
	product.Status = models.StatusForQuantity(input.Quantity, s.business.LowStockThreshold)

	if image != nil {
		filename, err := s.images.Replace(product.Image, input.Name, image)
		if err != nil {
			return nil, fmt.Errorf("failed to replace image: %w", err)
		}
		product.Image = &filename
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", product.ID))

	s.invalidateProduct(ctx, product.ID)
	s.publishLifecycle(ctx, models.EventTypeProductUpdated, product)
	return product, nil
}

// Delete removes the product record and its stored image file, if any
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if product.Image != nil && *product.Image != "" {
		if err := s.images.Remove(*product.Image); err != nil {
			s.logger.Warn("Failed to remove product image",
				zap.Int64("product_id", id),
				zap.Error(err))
		}
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	s.invalidateProduct(ctx, id)
	s.publishLifecycle(ctx, models.EventTypeProductDeleted, product)
	return nil
}

// InventorySummary returns the status/expiry aggregation backing the
// inventory listing. Role-gated like the listing itself.
func (s *ProductService) InventorySummary(ctx context.Context, role string) (*report.InventorySummary, error) {
	if !canViewInventory(role) {
		return nil, fmt.Errorf("report for role %q: %w", role, store.ErrNotFound)
	}

	var summary report.InventorySummary
	if s.cachedReport(ctx, ReportInventory, &summary) {
		return &summary, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	summary = report.BuildInventorySummary(products, time.Now(), s.business.NearExpiryDays)
	s.cacheReport(ctx, ReportInventory, summary)
	return &summary, nil
}

// DashboardSummary returns the quantity/expiry aggregation for the admin
// dashboard
func (s *ProductService) DashboardSummary(ctx context.Context) (*report.DashboardSummary, error) {
	var summary report.DashboardSummary
	if s.cachedReport(ctx, ReportDashboard, &summary) {
		return &summary, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	summary = report.BuildDashboardSummary(products, time.Now(),
		s.business.LowStockThreshold, s.business.DashboardWarnDays)
	s.cacheReport(ctx, ReportDashboard, summary)
	return &summary, nil
}

// Statuses returns the status lookup table
func (s *ProductService) Statuses(ctx context.Context) ([]models.Status, error) {
	return s.store.GetStatuses(ctx)
}

func (s *ProductService) cachedReport(ctx context.Context, name string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetCachedReport(ctx, name, out)
	if err != nil {
		s.logger.Warn("Report cache lookup failed", zap.Error(err))
		util.ReportCacheHitsTotal.WithLabelValues("error").Inc()
		return false
	}
	if hit {
		util.ReportCacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		util.ReportCacheHitsTotal.WithLabelValues("miss").Inc()
	}
	return hit
}

func (s *ProductService) cacheReport(ctx context.Context, name string, payload interface{}) {
	if s.cache == nil {
		return
	}
	ttl := time.Duration(s.business.ReportCacheSeconds) * time.Second
	if err := s.cache.CacheReport(ctx, name, payload, ttl); err != nil {
		s.logger.Warn("Failed to cache report", zap.Error(err))
	}
}

func (s *ProductService) invalidateProduct(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
	s.invalidateReports(ctx)
}

func (s *ProductService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReports(ctx, ReportInventory, ReportDashboard); err != nil {
		s.logger.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}

func (s *ProductService) publishLifecycle(ctx context.Context, eventType string, product *models.Product) {
	if s.events == nil {
		return
	}

	event := &models.ProductLifecycleEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  product.Quantity,
	}

	if err := s.events.PublishProductLifecycle(ctx, event); err != nil {
		s.logger.Error("Failed to publish product event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func canViewInventory(role string) bool {
	return role == models.RoleAdmin || role == models.RoleManager
}

func validateProductInput(input *ProductInput) (time.Time, *models.ValidationError) {
	verr := models.NewValidationError()

	if input.Name == "" {
		verr.Add("name", "is required")
	} else if len(input.Name) > 255 {
		verr.Add("name", "must be at most 255 characters")
	}

	if input.Quantity < 0 {
		verr.Add("quantity", "must be zero or greater")
	}

	if input.Price < 0 {
		verr.Add("price", "must be zero or greater")
	}

	if input.Unit == "" {
		verr.Add("unit", "is required")
	} else if len(input.Unit) > 50 {
		verr.Add("unit", "must be at most 50 characters")
	}

	var expiresAt time.Time
	if input.ExpiresAt == "" {
		verr.Add("expires_at", "is required")
	} else {
		parsed, err := time.Parse("2006-01-02", input.ExpiresAt)
		if err != nil {
			verr.Add("expires_at", "must be a date in YYYY-MM-DD format")
		} else {
			expiresAt = parsed
		}
	}

	if verr.HasErrors() {
		return time.Time{}, verr
	}
	return expiresAt, nil
}
