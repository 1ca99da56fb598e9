package service

import (
	"context"
	"errors"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reservationStore is the persistence surface the reservation flow needs.
// *store.Store implements it; tests substitute an in-memory fake.
type reservationStore interface {
	ReserveStock(ctx context.Context, productID int64, quantity int) (*models.Reservation, *models.Product, error)
	CancelReservation(ctx context.Context, reservationID int64) (*models.Reservation, *models.Product, error)
	CancelReservationByProduct(ctx context.Context, productID int64) (*models.Reservation, *models.Product, error)
	AdjustQuantity(ctx context.Context, productID int64, delta int) (*models.Product, error)
	GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// EventPublisher publishes domain events; broker.EventPublisher implements it
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, event *models.StockChangedEvent) error
	PublishProductLifecycle(ctx context.Context, event *models.ProductLifecycleEvent) error
}

// Cache is the product/report cache surface; redisclient.Client implements it
type Cache interface {
	CacheProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	GetCachedProduct(ctx context.Context, productID int64) (*models.Product, error)
	InvalidateProduct(ctx context.Context, productID int64) error
	CacheReport(ctx context.Context, name string, payload interface{}, ttl time.Duration) error
	GetCachedReport(ctx context.Context, name string, out interface{}) (bool, error)
	InvalidateReports(ctx context.Context, names ...string) error
}

// Report cache keys
const (
	ReportInventory = "inventory"
	ReportDashboard = "dashboard"
)

// ReservationService enforces the stock/reservation invariant: a reservation
// is only ever created together with the matching stock decrement, and stock
// is restored exactly once when it is cancelled.
type ReservationService struct {
	store  reservationStore
	cache  Cache
	events EventPublisher
	logger *zap.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(store reservationStore, cache Cache, events EventPublisher) *ReservationService {
	return &ReservationService{
		store:  store,
		cache:  cache,
		events: events,
		logger: util.GetLogger(),
	}
}

// ReserveRequest represents an add-to-cart request
type ReserveRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// ReserveResponse is returned after a successful reservation
type ReserveResponse struct {
	ReservationID int64           `json:"reservation_id"`
	Product       *models.Product `json:"product"`
}

// Reserve validates the requested quantity, atomically decrements stock, and
// creates the reservation. Fails with store.ErrNotFound or
// store.ErrInsufficientStock; on failure nothing is mutated.
func (s *ReservationService) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Reserve")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StockReserveLatency.Observe(time.Since(start).Seconds())
	}()

	if req.Quantity < 1 {
		verr := models.NewValidationError()
		verr.Add("quantity", "must be at least 1")
		util.ReservationsFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, verr
	}

	reservation, product, err := s.store.ReserveStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case isNotFound(err):
			util.ReservationsFailedTotal.WithLabelValues("not_found").Inc()
		case isInsufficientStock(err):
			util.ReservationsFailedTotal.WithLabelValues("insufficient_stock").Inc()
		default:
			util.ReservationsFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	util.ReservationsCreatedTotal.Inc()
	s.logger.Info("Stock reserved",
		zap.Int64("product_id", product.ID),
		zap.Int64("reservation_id", reservation.ID),
		zap.Int("quantity", reservation.Quantity),
		zap.Int("remaining", product.Quantity))

	s.invalidate(ctx, product.ID)
	s.publishStockChanged(ctx, models.EventTypeStockReserved, reservation, product)

	return &ReserveResponse{
		ReservationID: reservation.ID,
		Product:       product,
	}, nil
}

// CancelResponse reports whether a reservation was actually released
type CancelResponse struct {
	Released bool            `json:"released"`
	Product  *models.Product `json:"product,omitempty"`
}

// Cancel restores stock from a reservation and removes it. Cancelling a
// reservation that no longer exists is an idempotent no-op that still
// reports success.
func (s *ReservationService) Cancel(ctx context.Context, reservationID int64) (*CancelResponse, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Cancel")
	defer span.End()

	reservation, product, err := s.store.CancelReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return s.finishCancel(ctx, reservation, product), nil
}

// CancelByProduct restores stock from the oldest reservation against the
// product. No reservation against the product is an idempotent no-op.
func (s *ReservationService) CancelByProduct(ctx context.Context, productID int64) (*CancelResponse, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.CancelByProduct")
	defer span.End()

	reservation, product, err := s.store.CancelReservationByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.finishCancel(ctx, reservation, product), nil
}

func (s *ReservationService) finishCancel(ctx context.Context, reservation *models.Reservation, product *models.Product) *CancelResponse {
	if reservation == nil {
		return &CancelResponse{Released: false}
	}

	util.ReservationsCancelledTotal.Inc()
	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("product_id", reservation.ProductID),
		zap.Int("restored", reservation.Quantity))

	s.invalidate(ctx, product.ID)
	s.publishStockChanged(ctx, models.EventTypeStockReleased, reservation, product)

	return &CancelResponse{Released: true, Product: product}
}

// AdjustQuantity applies an administrative relative stock change. The
// non-negativity invariant holds here too: an adjustment that would take the
// quantity below zero fails with store.ErrInsufficientStock.
func (s *ReservationService) AdjustQuantity(ctx context.Context, productID int64, delta int) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.AdjustQuantity")
	defer span.End()

	product, err := s.store.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	util.StockAdjustmentsTotal.Inc()
	s.logger.Info("Quantity adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("quantity", product.Quantity))

	s.invalidate(ctx, productID)
	s.publishStockChanged(ctx, models.EventTypeStockAdjusted,
		&models.Reservation{ProductID: productID, Quantity: delta}, product)

	return product, nil
}

// GetCartEntry returns a reservation together with its product
func (s *ReservationService) GetCartEntry(ctx context.Context, reservationID int64) (*models.Reservation, *models.Product, error) {
	reservation, err := s.store.GetReservationByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	product, err := s.store.GetProductByID(ctx, reservation.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return reservation, product, nil
}

func (s *ReservationService) publishStockChanged(ctx context.Context, eventType string, reservation *models.Reservation, product *models.Product) {
	if s.events == nil {
		return
	}

	event := &models.StockChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		ProductID:     product.ID,
		ReservationID: reservation.ID,
		Quantity:      reservation.Quantity,
		Remaining:     product.Quantity,
	}

	if err := s.events.PublishStockChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish stock event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func (s *ReservationService) invalidate(ctx context.Context, productID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
	if err := s.cache.InvalidateReports(ctx, ReportInventory, ReportDashboard); err != nil {
		s.logger.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isInsufficientStock(err error) bool {
	return errors.Is(err, store.ErrInsufficientStock)
}
