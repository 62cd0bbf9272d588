// Command seed creates driver and admin accounts. Positions appear once a
// driver starts reporting; this only provisions the profile rows.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/uuid"

	"github.com/wasteline/fleet_backendl/config"
	"github.com/wasteline/fleet_backendl/db"
	"github.com/wasteline/fleet_backendl/internal/models"
	"github.com/wasteline/fleet_backendl/internal/repositories"
	authService "github.com/wasteline/fleet_backendl/internal/services/auth"
)

func main() {
	var (
		role     = flag.String("role", "driver", "account role: driver or admin")
		email    = flag.String("email", "", "account email (required)")
		password = flag.String("password", "", "account password (required)")
		name     = flag.String("name", "", "display name (required)")
		license  = flag.String("license", "", "driver license number")
		vehicle  = flag.String("vehicle", "", "vehicle number plate")
		model    = flag.String("model", "", "vehicle model")
		phone    = flag.String("phone", "", "phone number")
	)
	flag.Parse()

	if *email == "" || *password == "" || *name == "" {
		log.Fatal("email, password and name are required")
	}

	cfg := config.NewConfig()
	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	hash, err := authService.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	id := uuid.NewString()

	switch *role {
	case "driver":
		if *license == "" || *vehicle == "" {
			log.Fatal("license and vehicle are required for drivers")
		}
		repo := repositories.NewDriverRepository(database)
		err = repo.Create(ctx, &models.Driver{
			ID:            id,
			Email:         *email,
			PasswordHash:  hash,
			Name:          *name,
			LicenseNumber: *license,
			VehicleNumber: *vehicle,
			VehicleModel:  *model,
			PhoneNumber:   *phone,
		})
	case "admin":
		repo := repositories.NewAdminRepository(database)
		err = repo.Create(ctx, &models.Admin{
			ID:           id,
			Email:        *email,
			PasswordHash: hash,
			Name:         *name,
		})
	default:
		log.Fatalf("Unknown role %q", *role)
	}

	if err != nil {
		log.Fatalf("Failed to create %s: %v", *role, err)
	}
	log.Printf("Created %s %s (%s)", *role, *name, id)
}
