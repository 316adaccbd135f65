package parkingspot

import (
	"time"

	"github.com/google/uuid"
)

func NewFromRequest(req ParkingSpotRequest, now time.Time) ParkingSpot {
	return ParkingSpot{
		ID:                uuid.NewString(),
		ParkingSpotNumber: req.ParkingSpotNumber,
		LicensePlateCar:   req.LicensePlateCar,
		CarBrand:          req.CarBrand,
		CarModel:          req.CarModel,
		CarColor:          req.CarColor,
		RegistrationDate:  now.UTC().Truncate(time.Second),
		ResponsibleName:   req.ResponsibleName,
		Block:             req.Block,
	}
}

// Apply overwrites every mutable field. ID and RegistrationDate are left alone.
func (p *ParkingSpot) Apply(req UpdateParkingSpotRequest) {
	p.ParkingSpotNumber = req.ParkingSpotNumber
	p.LicensePlateCar = req.LicensePlateCar
	p.CarBrand = req.CarBrand
	p.CarModel = req.CarModel
	p.CarColor = req.CarColor
	p.ResponsibleName = req.ResponsibleName
	p.Block = req.Block
}

// AsUpdate lets a create payload be applied as a full update.
func (req ParkingSpotRequest) AsUpdate() UpdateParkingSpotRequest {
	return UpdateParkingSpotRequest(req)
}
