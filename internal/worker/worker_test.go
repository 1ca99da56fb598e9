package worker

import (
	"context"
	"fmt"
	"testing"

	"inventory-service/internal/models"
	"inventory-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

type fakeStatusStore struct {
	products map[int64]*models.Product
	updates  []string
}

func (f *fakeStatusStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (f *fakeStatusStore) UpdateProductStatus(ctx context.Context, productID int64, status string) error {
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, store.ErrNotFound)
	}
	p.Status = status
	f.updates = append(f.updates, status)
	return nil
}

func event(productID int64) *models.StockChangedEvent {
	return &models.StockChangedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeStockReserved},
		ProductID: productID,
	}
}

func TestHandleStockChangedUpdatesStatus(t *testing.T) {
	fs := &fakeStatusStore{products: map[int64]*models.Product{
		1: {ID: 1, Quantity: 0, Status: models.StatusAvailable},
	}}
	w := &StatusWorker{store: fs, lowThreshold: 2, logger: testLogger()}

	require.NoError(t, w.HandleStockChanged(context.Background(), event(1)))
	assert.Equal(t, models.StatusUnavailable, fs.products[1].Status)
	assert.Equal(t, []string{models.StatusUnavailable}, fs.updates)
}

func TestHandleStockChangedNoWriteWhenStatusUnchanged(t *testing.T) {
	fs := &fakeStatusStore{products: map[int64]*models.Product{
		1: {ID: 1, Quantity: 10, Status: models.StatusAvailable},
	}}
	w := &StatusWorker{store: fs, lowThreshold: 2, logger: testLogger()}

	require.NoError(t, w.HandleStockChanged(context.Background(), event(1)))
	assert.Empty(t, fs.updates)
}

func TestHandleStockChangedLowThreshold(t *testing.T) {
	fs := &fakeStatusStore{products: map[int64]*models.Product{
		1: {ID: 1, Quantity: 1, Status: models.StatusAvailable},
	}}
	w := &StatusWorker{store: fs, lowThreshold: 2, logger: testLogger()}

	require.NoError(t, w.HandleStockChanged(context.Background(), event(1)))
	assert.Equal(t, models.StatusLow, fs.products[1].Status)
}

func TestHandleStockChangedSkipsDeletedProduct(t *testing.T) {
	fs := &fakeStatusStore{products: map[int64]*models.Product{}}
	w := &StatusWorker{store: fs, lowThreshold: 2, logger: testLogger()}

	assert.NoError(t, w.HandleStockChanged(context.Background(), event(99)))
}
