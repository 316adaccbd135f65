package parkingspot

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage = 0
	DefaultSize = 10
	MaxSize     = 100
	DefaultSort = "id"

	// MaxPage keeps Page*MaxSize within int.
	MaxPage = math.MaxInt / MaxSize
)

var (
	ErrInvalidSort  = errors.New("invalid sort parameter")
	ErrPageTooLarge = errors.New("page is out of range")
)

// sortable JSON field -> column
var sortColumns = map[string]string{
	"id":                "id",
	"parkingSpotNumber": "parking_spot_number",
	"licensePlateCar":   "license_plate_car",
	"carBrand":          "car_brand",
	"carModel":          "car_model",
	"carColor":          "car_color",
	"registrationDate":  "registration_date",
	"responsibleName":   "responsible_name",
	"block":             "block",
}

type PageRequest struct {
	Page int
	Size int
	Sort string // JSON field name
	Desc bool
}

func DefaultPageRequest() PageRequest {
	return PageRequest{Page: DefaultPage, Size: DefaultSize, Sort: DefaultSort}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// SortColumn returns the storage column for the requested sort field.
func (p PageRequest) SortColumn() (string, bool) {
	col, ok := sortColumns[p.Sort]
	return col, ok
}

func (p PageRequest) SortValue() string {
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return p.Sort + ": " + dir
}

// ParsePageRequest resolves the page, size and sort query values. Out of range page and size values
// are clamped rather than rejected; an unknown sort field is an error.
func ParsePageRequest(page, size, sort string) (PageRequest, error) {
	pr := DefaultPageRequest()

	if v := strings.TrimSpace(page); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, errors.New("page must be an integer")
		}
		if n > MaxPage {
			return PageRequest{}, ErrPageTooLarge
		}
		if n > 0 {
			pr.Page = n
		}
	}

	if v := strings.TrimSpace(size); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, errors.New("size must be an integer")
		}
		switch {
		case n < 1:
			pr.Size = DefaultSize
		case n > MaxSize:
			pr.Size = MaxSize
		default:
			pr.Size = n
		}
	}

	if v := strings.TrimSpace(sort); v != "" {
		field, dir, _ := strings.Cut(v, ",")
		field = strings.TrimSpace(field)

		if _, ok := sortColumns[field]; !ok {
			return PageRequest{}, ErrInvalidSort
		}
		pr.Sort = field

		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
			pr.Desc = false
		case "desc":
			pr.Desc = true
		default:
			return PageRequest{}, ErrInvalidSort
		}
	}

	return pr, nil
}

type Page struct {
	Content          []ParkingSpot `json:"content"`
	TotalElements    int           `json:"totalElements"`
	TotalPages       int           `json:"totalPages"`
	Number           int           `json:"number"`
	Size             int           `json:"size"`
	NumberOfElements int           `json:"numberOfElements"`
	First            bool          `json:"first"`
	Last             bool          `json:"last"`
	Empty            bool          `json:"empty"`
	Sort             string        `json:"sort"`
}

func NewPage(content []ParkingSpot, total int, req PageRequest) Page {
	if content == nil {
		content = []ParkingSpot{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}

	return Page{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
		Sort:             req.SortValue(),
	}
}
