package parkingspot

import (
	"encoding/json"
	"errors"
	"time"
)

// DateFormat is the wire format of RegistrationDate. The value is always UTC.
const DateFormat = "2006-01-02T15:04:05Z"

type ParkingSpot struct {
	ID                string    `json:"id"`
	ParkingSpotNumber string    `json:"parkingSpotNumber"`
	LicensePlateCar   string    `json:"licensePlateCar"`
	CarBrand          string    `json:"carBrand"`
	CarModel          string    `json:"carModel"`
	CarColor          string    `json:"carColor"`
	RegistrationDate  time.Time `json:"registrationDate"`
	ResponsibleName   string    `json:"responsibleName"`
	Block             string    `json:"block"`
}

func (p ParkingSpot) MarshalJSON() ([]byte, error) {
	type alias ParkingSpot

	return json.Marshal(struct {
		alias
		RegistrationDate string `json:"registrationDate"`
	}{
		alias:            alias(p),
		RegistrationDate: p.RegistrationDate.UTC().Format(DateFormat),
	})
}

func (p *ParkingSpot) UnmarshalJSON(b []byte) error {
	type alias ParkingSpot

	aux := struct {
		*alias
		RegistrationDate string `json:"registrationDate"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if aux.RegistrationDate == "" {
		p.RegistrationDate = time.Time{}
		return nil
	}

	t, err := time.Parse(DateFormat, aux.RegistrationDate)
	if err != nil {
		return err
	}

	p.RegistrationDate = t.UTC()
	return nil
}

var (
	ErrNotFound          = errors.New("parking spot not found")
	ErrLicensePlateInUse = errors.New("license plate car already in use")
	ErrSpotNumberInUse   = errors.New("parking spot number already in use")
	ErrBlockInUse        = errors.New("block already in use")
	ErrDuplicateID       = errors.New("parking spot id already exists")
)

// ParkingSpotRequest is the create payload. id and registrationDate are server-assigned.
type ParkingSpotRequest struct {
	ParkingSpotNumber string `json:"parkingSpotNumber" binding:"required,notblank,max=10"`
	LicensePlateCar   string `json:"licensePlateCar" binding:"required,notblank,len=7"`
	CarBrand          string `json:"carBrand" binding:"required,notblank,max=70"`
	CarModel          string `json:"carModel" binding:"required,notblank,max=70"`
	CarColor          string `json:"carColor" binding:"required,notblank,max=70"`
	ResponsibleName   string `json:"responsibleName" binding:"required,notblank,max=130"`
	Block             string `json:"block" binding:"required,notblank,max=30"`
}

// UpdateParkingSpotRequest is a full replacement of the mutable fields. Only the column limits are enforced here.
type UpdateParkingSpotRequest struct {
	ParkingSpotNumber string `json:"parkingSpotNumber" binding:"max=10"`
	LicensePlateCar   string `json:"licensePlateCar" binding:"max=7"`
	CarBrand          string `json:"carBrand" binding:"max=70"`
	CarModel          string `json:"carModel" binding:"max=70"`
	CarColor          string `json:"carColor" binding:"max=70"`
	ResponsibleName   string `json:"responsibleName" binding:"max=130"`
	Block             string `json:"block" binding:"max=30"`
}
