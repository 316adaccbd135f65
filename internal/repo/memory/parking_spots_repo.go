package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
)

// ParkingSpotsRepo keeps records in process memory and enforces the same
// uniqueness rules as the postgres schema.
type ParkingSpotsRepo struct {
	mu    sync.RWMutex
	items map[string]parkingspot.ParkingSpot
}

func NewParkingSpotsRepo() *ParkingSpotsRepo {
	return &ParkingSpotsRepo{
		items: make(map[string]parkingspot.ParkingSpot),
	}
}

func (r *ParkingSpotsRepo) Insert(_ context.Context, p parkingspot.ParkingSpot) (parkingspot.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; ok {
		return parkingspot.ParkingSpot{}, parkingspot.ErrDuplicateID
	}

	if err := r.checkUniqueLocked(p); err != nil {
		return parkingspot.ParkingSpot{}, err
	}

	r.items[p.ID] = p
	return p, nil
}

func (r *ParkingSpotsRepo) Update(_ context.Context, p parkingspot.ParkingSpot) (parkingspot.ParkingSpot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[p.ID]
	if !ok {
		return parkingspot.ParkingSpot{}, parkingspot.ErrNotFound
	}

	if err := r.checkUniqueLocked(p); err != nil {
		return parkingspot.ParkingSpot{}, err
	}

	// registration date is immutable
	p.RegistrationDate = current.RegistrationDate
	r.items[p.ID] = p

	return p, nil
}

func (r *ParkingSpotsRepo) GetByID(_ context.Context, id string) (parkingspot.ParkingSpot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return parkingspot.ParkingSpot{}, parkingspot.ErrNotFound
	}
	return p, nil
}

func (r *ParkingSpotsRepo) FindByLicensePlateCar(_ context.Context, plate string) (parkingspot.ParkingSpot, error) {
	return r.findBy(func(p parkingspot.ParkingSpot) bool { return p.LicensePlateCar == plate })
}

func (r *ParkingSpotsRepo) FindByParkingSpotNumber(_ context.Context, number string) (parkingspot.ParkingSpot, error) {
	return r.findBy(func(p parkingspot.ParkingSpot) bool { return p.ParkingSpotNumber == number })
}

func (r *ParkingSpotsRepo) List(_ context.Context, req parkingspot.PageRequest) ([]parkingspot.ParkingSpot, int, error) {
	r.mu.RLock()
	all := make([]parkingspot.ParkingSpot, 0, len(r.items))
	for _, p := range r.items {
		all = append(all, p)
	}
	r.mu.RUnlock()

	less := lessFor(req.Sort)
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if req.Desc {
			a, b = b, a
		}
		if c := less(a, b); c != 0 {
			return c < 0
		}
		// stable ordering for pagination
		return all[i].ID < all[j].ID
	})

	total := len(all)
	start := req.Offset()
	if start < 0 || start >= total {
		return []parkingspot.ParkingSpot{}, total, nil
	}

	end := start + req.Size
	if end > total {
		end = total
	}

	out := make([]parkingspot.ParkingSpot, end-start)
	copy(out, all[start:end])

	return out, total, nil
}

func (r *ParkingSpotsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return parkingspot.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

// Ping satisfies the readiness check.
func (r *ParkingSpotsRepo) Ping(context.Context) error {
	return nil
}

func (r *ParkingSpotsRepo) findBy(match func(parkingspot.ParkingSpot) bool) (parkingspot.ParkingSpot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if match(p) {
			return p, nil
		}
	}
	return parkingspot.ParkingSpot{}, parkingspot.ErrNotFound
}

// caller holds r.mu. The record with the same id is ignored so updates can keep their own values.
// Fields are checked in a fixed order, plate then spot number then block, across all records.
func (r *ParkingSpotsRepo) checkUniqueLocked(p parkingspot.ParkingSpot) error {
	checks := []struct {
		same func(a, b parkingspot.ParkingSpot) bool
		err  error
	}{
		{func(a, b parkingspot.ParkingSpot) bool { return a.LicensePlateCar == b.LicensePlateCar }, parkingspot.ErrLicensePlateInUse},
		{func(a, b parkingspot.ParkingSpot) bool { return a.ParkingSpotNumber == b.ParkingSpotNumber }, parkingspot.ErrSpotNumberInUse},
		{func(a, b parkingspot.ParkingSpot) bool { return a.Block == b.Block }, parkingspot.ErrBlockInUse},
	}

	for _, c := range checks {
		for id, other := range r.items {
			if id != p.ID && c.same(other, p) {
				return c.err
			}
		}
	}
	return nil
}

func lessFor(field string) func(a, b parkingspot.ParkingSpot) int {
	switch field {
	case "parkingSpotNumber":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.ParkingSpotNumber, b.ParkingSpotNumber) }
	case "licensePlateCar":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.LicensePlateCar, b.LicensePlateCar) }
	case "carBrand":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.CarBrand, b.CarBrand) }
	case "carModel":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.CarModel, b.CarModel) }
	case "carColor":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.CarColor, b.CarColor) }
	case "registrationDate":
		return func(a, b parkingspot.ParkingSpot) int { return a.RegistrationDate.Compare(b.RegistrationDate) }
	case "responsibleName":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.ResponsibleName, b.ResponsibleName) }
	case "block":
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.Block, b.Block) }
	default:
		return func(a, b parkingspot.ParkingSpot) int { return strings.Compare(a.ID, b.ID) }
	}
}
