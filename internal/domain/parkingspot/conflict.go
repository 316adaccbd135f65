package parkingspot

import "errors"

type Conflict int

const (
	ConflictNone Conflict = iota
	ConflictLicensePlate
	ConflictSpotNumber
	ConflictBlock
)

func (c Conflict) Message() string {
	switch c {
	case ConflictLicensePlate:
		return "Conflict: car with this license plate is already parked!"
	case ConflictSpotNumber:
		return "Conflict: parking spot is already taken!"
	case ConflictBlock:
		return "Conflict: block is already taken!"
	default:
		return ""
	}
}

// Code is the machine readable error code used in API responses.
func (c Conflict) Code() string {
	switch c {
	case ConflictLicensePlate:
		return "already_parked"
	case ConflictSpotNumber:
		return "spot_taken"
	case ConflictBlock:
		return "block_taken"
	default:
		return ""
	}
}

func (c Conflict) Err() error {
	switch c {
	case ConflictLicensePlate:
		return ErrLicensePlateInUse
	case ConflictSpotNumber:
		return ErrSpotNumberInUse
	case ConflictBlock:
		return ErrBlockInUse
	default:
		return nil
	}
}

// ConflictFromError maps a uniqueness error raised by a store back to its Conflict.
func ConflictFromError(err error) Conflict {
	switch {
	case errors.Is(err, ErrLicensePlateInUse):
		return ConflictLicensePlate
	case errors.Is(err, ErrSpotNumberInUse):
		return ConflictSpotNumber
	case errors.Is(err, ErrBlockInUse):
		return ConflictBlock
	default:
		return ConflictNone
	}
}
