package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
)

// CreateStaff inserts a new staff record
func (s *Store) CreateStaff(ctx context.Context, staff *models.Staff) error {
	query := `
		INSERT INTO staff (name, phone, email, position, branch)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, staff, query,
		staff.Name, staff.Phone, staff.Email, staff.Position, staff.Branch)
}

// GetStaffByID retrieves a staff record by ID
func (s *Store) GetStaffByID(ctx context.Context, id int64) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.GetContext(ctx, &staff, "SELECT * FROM staff WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetStaffs retrieves all staff records
func (s *Store) GetStaffs(ctx context.Context) ([]models.Staff, error) {
	var staffs []models.Staff
	err := s.db.SelectContext(ctx, &staffs, "SELECT * FROM staff ORDER BY id")
	return staffs, err
}

// UpdateStaff replaces all mutable staff fields
func (s *Store) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE staff
		SET name = $1, phone = $2, email = $3, position = $4, branch = $5, updated_at = NOW()
		WHERE id = $6`,
		staff.Name, staff.Phone, staff.Email, staff.Position, staff.Branch, staff.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("staff %d: %w", staff.ID, ErrNotFound)
	}
	return nil
}

// DeleteStaff removes a staff record
func (s *Store) DeleteStaff(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM staff WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	return nil
}

// StaffEmailInUse reports whether another staff record (id != excludeID)
// already uses the given email
func (s *Store) StaffEmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM staff WHERE email = $1 AND id <> $2)",
		email, excludeID)
	return exists, err
}
