package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unique constraint names, see internal/db/schema.sql
const (
	constraintSpotNumber   = "parking_spot_number_uniq"
	constraintLicensePlate = "parking_spot_license_plate_car_uniq"
	constraintBlock        = "parking_spot_block_uniq"
	constraintPrimaryKey   = "parking_spot_pkey"
)

const selectColumns = `id, parking_spot_number, license_plate_car, car_brand, car_model, car_color, registration_date, responsible_name, block`

type ParkingSpotsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewParkingSpotsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ParkingSpotsRepo {
	return &ParkingSpotsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *ParkingSpotsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// mapWriteError turns unique violations into the domain errors the API maps to 409.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintLicensePlate:
		return parkingspot.ErrLicensePlateInUse
	case constraintSpotNumber:
		return parkingspot.ErrSpotNumberInUse
	case constraintBlock:
		return parkingspot.ErrBlockInUse
	case constraintPrimaryKey:
		return parkingspot.ErrDuplicateID
	default:
		return err
	}
}

// Insert runs the insert in its own transaction.
func (repo *ParkingSpotsRepo) Insert(ctx context.Context, p parkingspot.ParkingSpot) (saved parkingspot.ParkingSpot, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("parking_spots.insert", func() error {
		return tx.QueryRow(ctx, `
		INSERT INTO parking_spot (`+selectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+selectColumns,
			p.ID, p.ParkingSpotNumber, p.LicensePlateCar, p.CarBrand, p.CarModel, p.CarColor,
			p.RegistrationDate, p.ResponsibleName, p.Block,
		).Scan(scanTargets(&saved)...)
	})

	if err != nil {
		err = mapWriteError(err)
		return
	}

	err = tx.Commit(ctx)
	if err != nil {
		return
	}

	saved.RegistrationDate = saved.RegistrationDate.UTC()
	return
}

// Update replaces the mutable columns. id and registration_date are never written.
func (repo *ParkingSpotsRepo) Update(ctx context.Context, p parkingspot.ParkingSpot) (updated parkingspot.ParkingSpot, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("parking_spots.update", func() error {
		return tx.QueryRow(ctx, `
		UPDATE parking_spot
			SET parking_spot_number = $2,
				license_plate_car = $3,
				car_brand = $4,
				car_model = $5,
				car_color = $6,
				responsible_name = $7,
				block = $8
		WHERE id = $1
		RETURNING `+selectColumns,
			p.ID, p.ParkingSpotNumber, p.LicensePlateCar, p.CarBrand, p.CarModel, p.CarColor,
			p.ResponsibleName, p.Block,
		).Scan(scanTargets(&updated)...)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = parkingspot.ErrNotFound
			return
		}
		err = mapWriteError(err)
		return
	}

	err = tx.Commit(ctx)
	if err != nil {
		return
	}

	updated.RegistrationDate = updated.RegistrationDate.UTC()
	return
}

func (repo *ParkingSpotsRepo) GetByID(ctx context.Context, id string) (parkingspot.ParkingSpot, error) {
	return repo.getOne(ctx, "parking_spots.get_by_id", `SELECT `+selectColumns+` FROM parking_spot WHERE id = $1`, id)
}

func (repo *ParkingSpotsRepo) FindByLicensePlateCar(ctx context.Context, plate string) (parkingspot.ParkingSpot, error) {
	return repo.getOne(ctx, "parking_spots.find_by_license_plate", `SELECT `+selectColumns+` FROM parking_spot WHERE license_plate_car = $1`, plate)
}

func (repo *ParkingSpotsRepo) FindByParkingSpotNumber(ctx context.Context, number string) (parkingspot.ParkingSpot, error) {
	return repo.getOne(ctx, "parking_spots.find_by_spot_number", `SELECT `+selectColumns+` FROM parking_spot WHERE parking_spot_number = $1`, number)
}

func (repo *ParkingSpotsRepo) getOne(ctx context.Context, op, query string, arg string) (parkingspot.ParkingSpot, error) {
	var p parkingspot.ParkingSpot

	err := repo.observe(op, func() error {
		return repo.pool.QueryRow(ctx, query, arg).Scan(scanTargets(&p)...)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return parkingspot.ParkingSpot{}, parkingspot.ErrNotFound
		}
		return parkingspot.ParkingSpot{}, err
	}

	p.RegistrationDate = p.RegistrationDate.UTC()
	return p, nil
}

func (repo *ParkingSpotsRepo) List(ctx context.Context, req parkingspot.PageRequest) ([]parkingspot.ParkingSpot, int, error) {
	col, ok := req.SortColumn()
	if !ok {
		return nil, 0, parkingspot.ErrInvalidSort
	}

	dir := "ASC"
	if req.Desc {
		dir = "DESC"
	}

	// col is whitelisted by SortColumn; id keeps the order stable between pages
	query := fmt.Sprintf(`SELECT %s FROM parking_spot ORDER BY %s %s, id ASC LIMIT $1 OFFSET $2`, selectColumns, col, dir)

	var rows pgx.Rows
	err := repo.observe("parking_spots.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, query, req.Size, req.Offset())
		return qerr
	})
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	output := make([]parkingspot.ParkingSpot, 0, req.Size)

	for rows.Next() {
		var p parkingspot.ParkingSpot
		if err := rows.Scan(scanTargets(&p)...); err != nil {
			return nil, 0, err
		}
		p.RegistrationDate = p.RegistrationDate.UTC()
		output = append(output, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// counted separately so an out of range page still reports the total
	var total int
	err = repo.observe("parking_spots.count", func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parking_spot`).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (repo *ParkingSpotsRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var tag pgconn.CommandTag
	err = repo.observe("parking_spots.delete", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM parking_spot WHERE id = $1`, id)
		return e
	})
	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = parkingspot.ErrNotFound
		return
	}

	err = tx.Commit(ctx)
	return
}

func (repo *ParkingSpotsRepo) Ping(ctx context.Context) error {
	return repo.pool.Ping(ctx)
}

func scanTargets(p *parkingspot.ParkingSpot) []any {
	return []any{
		&p.ID, &p.ParkingSpotNumber, &p.LicensePlateCar, &p.CarBrand, &p.CarModel, &p.CarColor,
		&p.RegistrationDate, &p.ResponsibleName, &p.Block,
	}
}
