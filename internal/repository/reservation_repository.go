package repository

import (
	"context"

	"gorm.io/gorm"

	"coworking/internal/model"
)

// ReservationRepository defines reservation persistence operations. Every
// lookup and mutation of an existing row is scoped by the owning user id.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByIDForOwner(ctx context.Context, id, ownerID uint) (*model.Reservation, error)
	UpdateFields(ctx context.Context, id, ownerID uint, fields map[string]interface{}) error
	TransitionStatus(ctx context.Context, id, ownerID uint, from, to model.ReservationStatus) (bool, error)
	ListByOwner(ctx context.Context, ownerID uint, includeCancelled bool) ([]model.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create creates a new reservation.
func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByIDForOwner finds a reservation by ID among those owned by ownerID.
func (r *reservationRepository) FindByIDForOwner(ctx context.Context, id, ownerID uint) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateFields patches the given columns of an owned reservation. A row that
// does not match is left alone without error; callers check existence first.
func (r *reservationRepository) UpdateFields(ctx context.Context, id, ownerID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields).Error
}

// TransitionStatus moves an owned reservation from one status to another in a
// single conditional UPDATE. It reports false when no row was in the from state.
func (r *reservationRepository) TransitionStatus(ctx context.Context, id, ownerID uint, from, to model.ReservationStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND user_id = ? AND status = ?", id, ownerID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByOwner lists a user's reservations, active only unless includeCancelled is set.
func (r *reservationRepository) ListByOwner(ctx context.Context, ownerID uint, includeCancelled bool) ([]model.Reservation, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if !includeCancelled {
		query = query.Where("status = ?", model.ReservationStatusActive)
	}

	reservations := make([]model.Reservation, 0)
	if err := query.Order("start_datetime ASC").Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
