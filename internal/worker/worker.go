package worker

import (
	"context"
	"errors"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// statusStore is the persistence surface the status worker needs
type statusStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProductStatus(ctx context.Context, productID int64, status string) error
}

// StatusWorker keeps the stored availability status in step with stock
// movements. It consumes stock events and recomputes the status from the
// product's current quantity.
type StatusWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        statusStore
	lowThreshold int
	logger       *zap.Logger
}

// NewStatusWorker creates a new status worker
func NewStatusWorker(consumer *broker.Consumer, store statusStore, lowThreshold int) *StatusWorker {
	w := &StatusWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		store:        store,
		lowThreshold: lowThreshold,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnStockChanged(w.HandleStockChanged)
	return w
}

// Start starts the worker
func (w *StatusWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting status worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StatusWorker) Stop() error {
	w.logger.Info("Stopping status worker")
	return w.consumer.Close()
}

// HandleStockChanged recomputes the availability status for the product the
// event refers to. The product is re-read so out-of-order events cannot write
// a stale status; a product deleted since the event is skipped.
func (w *StatusWorker) HandleStockChanged(ctx context.Context, event *models.StockChangedEvent) error {
	product, err := w.store.GetProductByID(ctx, event.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.logger.Info("Skipping stock event for deleted product",
				zap.Int64("product_id", event.ProductID))
			return nil
		}
		return err
	}

	status := models.StatusForQuantity(product.Quantity, w.lowThreshold)
	if status == product.Status {
		return nil
	}

	if err := w.store.UpdateProductStatus(ctx, product.ID, status); err != nil {
		return err
	}

	w.logger.Info("Availability status updated",
		zap.Int64("product_id", product.ID),
		zap.String("from", product.Status),
		zap.String("to", status))
	return nil
}
