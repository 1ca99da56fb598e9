package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store with the same
// transactional semantics: a failed operation leaves nothing mutated.
type fakeStore struct {
	products     map[int64]*models.Product
	reservations map[int64]*models.Reservation
	staffs       map[int64]*models.Staff
	statuses     []models.Status
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:     make(map[int64]*models.Product),
		reservations: make(map[int64]*models.Reservation),
		staffs:       make(map[int64]*models.Staff),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addProduct(p models.Product) *models.Product {
	if p.ID == 0 {
		p.ID = f.id()
	}
	f.products[p.ID] = &p
	return &p
}

func copyProduct(p *models.Product) *models.Product {
	c := *p
	return &c
}

func (f *fakeStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	return copyProduct(p), nil
}

func (f *fakeStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = f.id()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	f.products[product.ID] = copyProduct(product)
	return nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, store.ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	f.products[product.ID] = copyProduct(product)
	return nil
}

func (f *fakeStore) UpdateProductStatus(ctx context.Context, productID int64, status string) error {
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, store.ErrNotFound)
	}
	p.Status = status
	return nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	delete(f.products, id)
	for rid, r := range f.reservations {
		if r.ProductID == id {
			delete(f.reservations, rid)
		}
	}
	return nil
}

func (f *fakeStore) GetStatuses(ctx context.Context) ([]models.Status, error) {
	return f.statuses, nil
}

func (f *fakeStore) ReserveStock(ctx context.Context, productID int64, quantity int) (*models.Reservation, *models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, nil, fmt.Errorf("product %d: %w", productID, store.ErrNotFound)
	}
	if p.Quantity < quantity {
		return nil, nil, fmt.Errorf("product %d: available=%d, requested=%d: %w",
			productID, p.Quantity, quantity, store.ErrInsufficientStock)
	}

	p.Quantity -= quantity
	r := &models.Reservation{
		ID:        f.id(),
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	f.reservations[r.ID] = r

	rc := *r
	return &rc, copyProduct(p), nil
}

func (f *fakeStore) CancelReservation(ctx context.Context, reservationID int64) (*models.Reservation, *models.Product, error) {
	r, ok := f.reservations[reservationID]
	if !ok {
		return nil, nil, nil
	}
	return f.release(r)
}

func (f *fakeStore) CancelReservationByProduct(ctx context.Context, productID int64) (*models.Reservation, *models.Product, error) {
	var oldest *models.Reservation
	for _, r := range f.reservations {
		if r.ProductID != productID {
			continue
		}
		if oldest == nil || r.ID < oldest.ID {
			oldest = r
		}
	}
	if oldest == nil {
		return nil, nil, nil
	}
	return f.release(oldest)
}

func (f *fakeStore) release(r *models.Reservation) (*models.Reservation, *models.Product, error) {
	p, ok := f.products[r.ProductID]
	if !ok {
		return nil, nil, fmt.Errorf("product %d: %w", r.ProductID, store.ErrNotFound)
	}
	p.Quantity += r.Quantity
	delete(f.reservations, r.ID)

	rc := *r
	return &rc, copyProduct(p), nil
}

func (f *fakeStore) AdjustQuantity(ctx context.Context, productID int64, delta int) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, store.ErrNotFound)
	}
	if p.Quantity+delta < 0 {
		return nil, fmt.Errorf("product %d: available=%d, delta=%d: %w",
			productID, p.Quantity, delta, store.ErrInsufficientStock)
	}
	p.Quantity += delta
	return copyProduct(p), nil
}

func (f *fakeStore) GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, store.ErrNotFound)
	}
	rc := *r
	return &rc, nil
}

func (f *fakeStore) CreateStaff(ctx context.Context, staff *models.Staff) error {
	staff.ID = f.id()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt
	c := *staff
	f.staffs[staff.ID] = &c
	return nil
}

func (f *fakeStore) GetStaffByID(ctx context.Context, id int64) (*models.Staff, error) {
	s, ok := f.staffs[id]
	if !ok {
		return nil, fmt.Errorf("staff %d: %w", id, store.ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (f *fakeStore) GetStaffs(ctx context.Context) ([]models.Staff, error) {
	out := make([]models.Staff, 0, len(f.staffs))
	for _, s := range f.staffs {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	if _, ok := f.staffs[staff.ID]; !ok {
		return fmt.Errorf("staff %d: %w", staff.ID, store.ErrNotFound)
	}
	staff.UpdatedAt = time.Now()
	c := *staff
	f.staffs[staff.ID] = &c
	return nil
}

func (f *fakeStore) DeleteStaff(ctx context.Context, id int64) error {
	if _, ok := f.staffs[id]; !ok {
		return fmt.Errorf("staff %d: %w", id, store.ErrNotFound)
	}
	delete(f.staffs, id)
	return nil
}

func (f *fakeStore) StaffEmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	for _, s := range f.staffs {
		if s.Email == email && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	stockEvents     []*models.StockChangedEvent
	lifecycleEvents []*models.ProductLifecycleEvent
}

func (r *recordingPublisher) PublishStockChanged(ctx context.Context, event *models.StockChangedEvent) error {
	r.stockEvents = append(r.stockEvents, event)
	return nil
}

func (r *recordingPublisher) PublishProductLifecycle(ctx context.Context, event *models.ProductLifecycleEvent) error {
	r.lifecycleEvents = append(r.lifecycleEvents, event)
	return nil
}
