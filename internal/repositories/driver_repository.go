package repositories

import (
	"context"
	"database/sql"

	"github.com/wasteline/fleet_backendl/internal/models"
)

type DriverRepository struct {
	db *sql.DB
}

func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `
		SELECT id, email, password_hash, name, license_number, vehicle_number, vehicle_model, phone_number, created_at
		FROM drivers
		WHERE id = $1
	`
	var d models.Driver
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.Email,
		&d.PasswordHash,
		&d.Name,
		&d.LicenseNumber,
		&d.VehicleNumber,
		&d.VehicleModel,
		&d.PhoneNumber,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	query := `
		SELECT id, email, password_hash, name, license_number, vehicle_number, vehicle_model, phone_number, created_at
		FROM drivers
		WHERE LOWER(email) = LOWER($1)
	`
	var d models.Driver
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&d.ID,
		&d.Email,
		&d.PasswordHash,
		&d.Name,
		&d.LicenseNumber,
		&d.VehicleNumber,
		&d.VehicleModel,
		&d.PhoneNumber,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DriverRepository) Create(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (id, email, password_hash, name, license_number, vehicle_number, vehicle_model, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		d.ID,
		d.Email,
		d.PasswordHash,
		d.Name,
		d.LicenseNumber,
		d.VehicleNumber,
		d.VehicleModel,
		d.PhoneNumber,
	).Scan(&d.CreatedAt)
}

func (r *DriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	query := `
		SELECT id, email, password_hash, name, license_number, vehicle_number, vehicle_model, phone_number, created_at
		FROM drivers
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(
			&d.ID,
			&d.Email,
			&d.PasswordHash,
			&d.Name,
			&d.LicenseNumber,
			&d.VehicleNumber,
			&d.VehicleModel,
			&d.PhoneNumber,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
