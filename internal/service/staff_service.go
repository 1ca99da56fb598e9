package service

import (
	"context"
	"fmt"
	"net/mail"

	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// staffStore is the persistence surface staff administration needs
type staffStore interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaffByID(ctx context.Context, id int64) (*models.Staff, error)
	GetStaffs(ctx context.Context) ([]models.Staff, error)
	UpdateStaff(ctx context.Context, staff *models.Staff) error
	DeleteStaff(ctx context.Context, id int64) error
	StaffEmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
}

// StaffService handles the staff roster, independent of the inventory flow
type StaffService struct {
	store  staffStore
	logger *zap.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(store staffStore) *StaffService {
	return &StaffService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// StaffInput carries the full field set for create and update
type StaffInput struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Email    string  `json:"email"`
	Position string  `json:"position"`
	Branch   *string `json:"branch"`
}

// List returns the full staff roster. Only the admin role may view it; any
// other role gets a not-found.
func (s *StaffService) List(ctx context.Context, role string) ([]models.Staff, error) {
	if role != models.RoleAdmin {
		return nil, fmt.Errorf("roster for role %q: %w", role, store.ErrNotFound)
	}
	return s.store.GetStaffs(ctx)
}

// Get returns a single staff record
func (s *StaffService) Get(ctx context.Context, id int64) (*models.Staff, error) {
	return s.store.GetStaffByID(ctx, id)
}

// Create validates and inserts a new staff record. The email must not be in
// use by any existing record.
func (s *StaffService) Create(ctx context.Context, input *StaffInput) (*models.Staff, error) {
	if err := s.validate(ctx, input, 0); err != nil {
		return nil, err
	}

	staff := &models.Staff{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Position: input.Position,
		Branch:   input.Branch,
	}

	if err := s.store.CreateStaff(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	s.logger.Info("Staff created",
		zap.Int64("staff_id", staff.ID),
		zap.String("email", staff.Email))
	return staff, nil
}

// Update replaces all staff fields. The email uniqueness check excludes the
// record's own id, so keeping the existing email always passes.
func (s *StaffService) Update(ctx context.Context, id int64, input *StaffInput) (*models.Staff, error) {
	staff, err := s.store.GetStaffByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, input, id); err != nil {
		return nil, err
	}

	staff.Name = input.Name
	staff.Phone = input.Phone
	staff.Email = input.Email
	staff.Position = input.Position
	staff.Branch = input.Branch

	if err := s.store.UpdateStaff(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.Info("Staff updated", zap.Int64("staff_id", staff.ID))
	return staff, nil
}

// Delete removes a staff record
func (s *StaffService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteStaff(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Staff deleted", zap.Int64("staff_id", id))
	return nil
}

func (s *StaffService) validate(ctx context.Context, input *StaffInput, excludeID int64) error {
	verr := models.NewValidationError()

	if input.Name == "" {
		verr.Add("name", "is required")
	} else if len(input.Name) > 255 {
		verr.Add("name", "must be at most 255 characters")
	}

	if input.Phone == "" {
		verr.Add("phone", "is required")
	} else if len(input.Phone) > 15 {
		verr.Add("phone", "must be at most 15 characters")
	}

	if input.Email == "" {
		verr.Add("email", "is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		verr.Add("email", "must be a valid email address")
	}

	if !models.ValidPosition(input.Position) {
		verr.Add("position", fmt.Sprintf("must be %q or %q", models.PositionStaff, models.PositionBranchHead))
	}

	if input.Branch != nil && !models.ValidBranch(*input.Branch) {
		verr.Add("branch", "is not a known branch")
	}

	if !verr.HasErrors() && input.Email != "" {
		inUse, err := s.store.StaffEmailInUse(ctx, input.Email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if inUse {
			verr.Add("email", "is already in use")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
