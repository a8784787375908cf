package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"coworking/internal/cache"
	apperrors "coworking/internal/errors"
	"coworking/internal/model"
	"coworking/internal/repository"
)

const reservationCacheTTL = 5 * time.Minute

// CreateReservationInput holds the fields of a new booking.
type CreateReservationInput struct {
	SpaceName     model.SpaceName
	StartDatetime time.Time
	EndDatetime   time.Time
}

// UpdateReservationInput is a partial patch; nil fields are left untouched.
type UpdateReservationInput struct {
	SpaceName     *model.SpaceName
	StartDatetime *time.Time
	EndDatetime   *time.Time
}

// IsEmpty reports whether the patch sets no field.
func (in UpdateReservationInput) IsEmpty() bool {
	return in.SpaceName == nil && in.StartDatetime == nil && in.EndDatetime == nil
}

// ReservationService manages the lifecycle of reservations. Every operation on
// an existing reservation is scoped to its owner; someone else's reservation
// is reported exactly like a missing one.
type ReservationService interface {
	Create(ctx context.Context, ownerID uint, input CreateReservationInput) (*model.Reservation, error)
	Get(ctx context.Context, id, ownerID uint) (*model.Reservation, error)
	Update(ctx context.Context, id, ownerID uint, input UpdateReservationInput) (*model.Reservation, error)
	Cancel(ctx context.Context, id, ownerID uint) (*model.Reservation, error)
	Reactivate(ctx context.Context, id, ownerID uint) (*model.Reservation, error)
	List(ctx context.Context, ownerID uint, includeCancelled bool) ([]model.Reservation, error)
}

type reservationService struct {
	repo  repository.ReservationRepository
	cache *cache.Client
}

// NewReservationService builds a ReservationService with repository and cache.
// A nil cache disables caching.
func NewReservationService(repo repository.ReservationRepository, cache *cache.Client) ReservationService {
	return &reservationService{repo: repo, cache: cache}
}

func (s *reservationService) cacheKey(ownerID, id uint) string {
	return fmt.Sprintf("reservation:%d:%d", ownerID, id)
}

func (s *reservationService) invalidate(ctx context.Context, ownerID, id uint) {
	_ = s.cache.Delete(ctx, s.cacheKey(ownerID, id))
}

// Create books a space for ownerID. Overlapping bookings are allowed.
func (s *reservationService) Create(ctx context.Context, ownerID uint, input CreateReservationInput) (*model.Reservation, error) {
	start, end := input.StartDatetime.UTC(), input.EndDatetime.UTC()
	if err := validateSlot(input.SpaceName, start, end); err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		UserID:        ownerID,
		SpaceName:     input.SpaceName,
		StartDatetime: start,
		EndDatetime:   end,
		Status:        model.ReservationStatusActive,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	return reservation, nil
}

func (s *reservationService) Get(ctx context.Context, id, ownerID uint) (*model.Reservation, error) {
	key := s.cacheKey(ownerID, id)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached model.Reservation
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	reservation, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(reservation); err == nil {
		_ = s.cache.Set(ctx, key, payload, reservationCacheTTL)
	}
	return reservation, nil
}

// Update applies the fields present in input. The merged slot must still be
// valid. Status is never changed here.
func (s *reservationService) Update(ctx context.Context, id, ownerID uint, input UpdateReservationInput) (*model.Reservation, error) {
	current, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		return current, nil
	}

	space, start, end := current.SpaceName, current.StartDatetime, current.EndDatetime
	fields := make(map[string]interface{}, 3)
	if input.SpaceName != nil {
		space = *input.SpaceName
		fields["space_name"] = space
	}
	if input.StartDatetime != nil {
		start = input.StartDatetime.UTC()
		fields["start_datetime"] = start
	}
	if input.EndDatetime != nil {
		end = input.EndDatetime.UTC()
		fields["end_datetime"] = end
	}
	if err := validateSlot(space, start, end); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, id, ownerID, fields); err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	s.invalidate(ctx, ownerID, id)

	return s.load(ctx, id, ownerID)
}

// Cancel soft-cancels a reservation. Cancelling one that is already cancelled
// returns it unchanged.
func (s *reservationService) Cancel(ctx context.Context, id, ownerID uint) (*model.Reservation, error) {
	if _, err := s.repo.TransitionStatus(ctx, id, ownerID, model.ReservationStatusActive, model.ReservationStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}
	s.invalidate(ctx, ownerID, id)

	return s.load(ctx, id, ownerID)
}

// Reactivate moves a cancelled reservation back to active. It fails with
// ErrReservationNotCancelled when the reservation is already active.
func (s *reservationService) Reactivate(ctx context.Context, id, ownerID uint) (*model.Reservation, error) {
	moved, err := s.repo.TransitionStatus(ctx, id, ownerID, model.ReservationStatusCancelled, model.ReservationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("reactivate reservation: %w", err)
	}

	reservation, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperrors.ErrReservationNotCancelled
	}
	s.invalidate(ctx, ownerID, id)
	return reservation, nil
}

func (s *reservationService) List(ctx context.Context, ownerID uint, includeCancelled bool) ([]model.Reservation, error) {
	reservations, err := s.repo.ListByOwner(ctx, ownerID, includeCancelled)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

func (s *reservationService) load(ctx context.Context, id, ownerID uint) (*model.Reservation, error) {
	reservation, err := s.repo.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return reservation, nil
}

func validateSlot(space model.SpaceName, start, end time.Time) error {
	if !space.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownSpace, space)
	}
	if !end.After(start) {
		return apperrors.ErrInvalidTimeRange
	}
	return nil
}
