package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
	"github.com/geocoder89/parkingcontrol/internal/notifications"
)

// Store is the persistence contract the service needs. Lookups report absence with
// parkingspot.ErrNotFound; uniqueness violations with the parkingspot.Err*InUse errors.
type Store interface {
	Insert(ctx context.Context, p parkingspot.ParkingSpot) (parkingspot.ParkingSpot, error)
	Update(ctx context.Context, p parkingspot.ParkingSpot) (parkingspot.ParkingSpot, error)
	GetByID(ctx context.Context, id string) (parkingspot.ParkingSpot, error)
	FindByLicensePlateCar(ctx context.Context, plate string) (parkingspot.ParkingSpot, error)
	FindByParkingSpotNumber(ctx context.Context, number string) (parkingspot.ParkingSpot, error)
	List(ctx context.Context, req parkingspot.PageRequest) ([]parkingspot.ParkingSpot, int, error)
	Delete(ctx context.Context, id string) error
}

type ParkingSpotService struct {
	store    Store
	notifier notifications.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewParkingSpotService(store Store, notifier notifications.Notifier, log *slog.Logger) *ParkingSpotService {
	if log == nil {
		log = slog.Default()
	}
	return &ParkingSpotService{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Save stores a new record with a fresh id and the current UTC time as its registration date.
func (s *ParkingSpotService) Save(ctx context.Context, req parkingspot.ParkingSpotRequest) (parkingspot.ParkingSpot, error) {
	p := parkingspot.NewFromRequest(req, s.now())

	saved, err := s.store.Insert(ctx, p)
	if err != nil {
		return parkingspot.ParkingSpot{}, fmt.Errorf("save parking spot: %w", err)
	}

	s.log.InfoContext(ctx, "parking_spot.created", "id", saved.ID, "parking_spot_number", saved.ParkingSpotNumber)
	s.notify(ctx, notifications.ActionCreated, saved)

	return saved, nil
}

// CheckSpotRegistered reports the first conflict found. The license plate is checked before the
// spot number, so a request clashing on both reports ConflictLicensePlate only.
//
// The check and the later insert run in separate transactions. Concurrent creates can both pass
// here; the store's unique constraints decide and Save then returns the matching Err*InUse.
func (s *ParkingSpotService) CheckSpotRegistered(ctx context.Context, req parkingspot.ParkingSpotRequest) (parkingspot.Conflict, error) {
	_, err := s.store.FindByLicensePlateCar(ctx, req.LicensePlateCar)
	switch {
	case err == nil:
		return parkingspot.ConflictLicensePlate, nil
	case !errors.Is(err, parkingspot.ErrNotFound):
		return parkingspot.ConflictNone, fmt.Errorf("check license plate: %w", err)
	}

	_, err = s.store.FindByParkingSpotNumber(ctx, req.ParkingSpotNumber)
	switch {
	case err == nil:
		return parkingspot.ConflictSpotNumber, nil
	case !errors.Is(err, parkingspot.ErrNotFound):
		return parkingspot.ConflictNone, fmt.Errorf("check parking spot number: %w", err)
	}

	return parkingspot.ConflictNone, nil
}

func (s *ParkingSpotService) FindAll(ctx context.Context, req parkingspot.PageRequest) (parkingspot.Page, error) {
	items, total, err := s.store.List(ctx, req)
	if err != nil {
		return parkingspot.Page{}, fmt.Errorf("list parking spots: %w", err)
	}

	return parkingspot.NewPage(items, total, req), nil
}

// FindOneByID returns ok=false when no record has the id. That is not an error.
func (s *ParkingSpotService) FindOneByID(ctx context.Context, id string) (parkingspot.ParkingSpot, bool, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, parkingspot.ErrNotFound) {
			return parkingspot.ParkingSpot{}, false, nil
		}
		return parkingspot.ParkingSpot{}, false, fmt.Errorf("find parking spot: %w", err)
	}

	return p, true, nil
}

func (s *ParkingSpotService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete parking spot: %w", err)
	}

	s.log.InfoContext(ctx, "parking_spot.deleted", "id", id)
	s.notify(ctx, notifications.ActionDeleted, parkingspot.ParkingSpot{ID: id})

	return nil
}

// UpdateOne overwrites the mutable fields of existing and persists it.
func (s *ParkingSpotService) UpdateOne(ctx context.Context, existing parkingspot.ParkingSpot, req parkingspot.UpdateParkingSpotRequest) (parkingspot.ParkingSpot, error) {
	existing.Apply(req)

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return parkingspot.ParkingSpot{}, fmt.Errorf("update parking spot: %w", err)
	}

	s.log.InfoContext(ctx, "parking_spot.updated", "id", updated.ID)
	s.notify(ctx, notifications.ActionUpdated, updated)

	return updated, nil
}

// notification failures never fail the write that triggered them
func (s *ParkingSpotService) notify(ctx context.Context, action notifications.Action, p parkingspot.ParkingSpot) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.NotifySpotChange(ctx, notifications.SpotChangeInput{
		Action:            action,
		ID:                p.ID,
		ParkingSpotNumber: p.ParkingSpotNumber,
		LicensePlateCar:   p.LicensePlateCar,
		At:                s.now().UTC(),
	})

	if err != nil {
		s.log.WarnContext(ctx, "parking_spot.notify_failed", "action", string(action), "id", p.ID, "err", err)
	}
}
