package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/wasteline/fleet_backendl/config"
	"github.com/wasteline/fleet_backendl/db"
	"github.com/wasteline/fleet_backendl/internal/routes"
)

func main() {
	cfg := config.NewConfig()

	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	redisClient := config.NewRedisClient()
	defer redisClient.Close()

	router := routes.Setup(cfg, database, redisClient)

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Server starting on %s", serverAddress)
	log.Fatal(http.ListenAndServe(serverAddress, router))
}
