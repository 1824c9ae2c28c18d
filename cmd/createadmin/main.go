package main

import (
	"fmt"
	"log"
	"os"

	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	"github.com/rknair/cloudpuff-backend/internal/db"
)

func main() {
	if len(os.Args) < 4 {
		log.Fatal("Usage: go run cmd/createadmin/main.go <email> <password> <name>")
	}

	email := os.Args[1]
	password := os.Args[2]
	name := os.Args[3]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	authService := service.NewAuthService(userRepo, cfg.JWT)

	user, err := authService.CreateAdmin(email, password, name)
	if err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	fmt.Printf("Admin account created: id=%d email=%s\n", user.ID, user.Email)
}
