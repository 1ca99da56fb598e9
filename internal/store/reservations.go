package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
)

// ReserveStock atomically checks stock, decrements it, and creates the
// reservation row within a single transaction (FOR UPDATE lock). Returns the
// new reservation and the product state after the decrement.
func (s *Store) ReserveStock(ctx context.Context, productID int64, quantity int) (*models.Reservation, *models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 FOR UPDATE", productID)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if product.Quantity < quantity {
		return nil, nil, fmt.Errorf("product %d: available=%d, requested=%d: %w",
			productID, product.Quantity, quantity, ErrInsufficientStock)
	}

	err = tx.GetContext(ctx, &product, `
		UPDATE products SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`,
		quantity, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	reservation := models.Reservation{ProductID: productID, Quantity: quantity}
	err = tx.GetContext(ctx, &reservation, `
		INSERT INTO reservations (product_id, quantity)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		productID, quantity)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &reservation, &product, nil
}

// CancelReservation restores reserved stock onto the product and deletes the
// reservation, all within one transaction. A missing reservation is a no-op
// and returns nil without error.
func (s *Store) CancelReservation(ctx context.Context, reservationID int64) (*models.Reservation, *models.Product, error) {
	return s.cancel(ctx, "SELECT * FROM reservations WHERE id = $1 FOR UPDATE", reservationID)
}

// CancelReservationByProduct restores stock from the oldest reservation
// against the product. A product with no reservations is a no-op.
func (s *Store) CancelReservationByProduct(ctx context.Context, productID int64) (*models.Reservation, *models.Product, error) {
	return s.cancel(ctx,
		"SELECT * FROM reservations WHERE product_id = $1 ORDER BY id LIMIT 1 FOR UPDATE", productID)
}

func (s *Store) cancel(ctx context.Context, lookup string, arg int64) (*models.Reservation, *models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var reservation models.Reservation
	err = tx.GetContext(ctx, &reservation, lookup, arg)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock reservation: %w", err)
	}

	var product models.Product
	err = tx.GetContext(ctx, &product, `
		UPDATE products SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`,
		reservation.Quantity, reservation.ProductID)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("product %d: %w", reservation.ProductID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore stock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = $1", reservation.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &reservation, &product, nil
}

// AdjustQuantity applies a relative quantity change under a row lock. The
// adjustment fails with ErrInsufficientStock if it would take the quantity
// negative.
func (s *Store) AdjustQuantity(ctx context.Context, productID int64, delta int) (*models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 FOR UPDATE", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if product.Quantity+delta < 0 {
		return nil, fmt.Errorf("product %d: available=%d, delta=%d: %w",
			productID, product.Quantity, delta, ErrInsufficientStock)
	}

	err = tx.GetContext(ctx, &product, `
		UPDATE products SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`,
		delta, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetReservationByID retrieves a reservation by ID
func (s *Store) GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.db.GetContext(ctx, &reservation, "SELECT * FROM reservations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetReservations retrieves all reservations
func (s *Store) GetReservations(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.SelectContext(ctx, &reservations, "SELECT * FROM reservations ORDER BY id")
	return reservations, err
}
