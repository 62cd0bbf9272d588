package models

import "time"

// Driver is a driver profile row. Positions are kept separately in the
// live position store, keyed by ID.
type Driver struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleModel  string    `json:"vehicle_model"`
	PhoneNumber   string    `json:"phone_number"`
	CreatedAt     time.Time `json:"created_at"`
}

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}
