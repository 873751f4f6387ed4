// Command seed populates the database with fake accounts for development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"visage/internal/config"
	"visage/internal/crypto"
	"visage/internal/database"
	"visage/internal/models"
	"visage/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// seedPassword satisfies the password policy so seeded accounts can log in.
const seedPassword = "Passw0rd@dev"

func main() {
	numUsers := flag.Int("users", 25, "Number of accounts to create")
	seed := flag.Int64("seed", 0, "Faker seed (0 means random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	hash, err := crypto.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	created := 0
	for i := 0; i < *numUsers; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 99)),
			Email:    gofakeit.Email(),
			Password: hash,
		}
		if err := users.Create(ctx, user); err != nil {
			// Conflicts happen when the faker repeats itself; skip and move on.
			log.Printf("skipping user %q: %v", user.Username, err)
			continue
		}
		created++
	}

	log.Printf("Seeded %d accounts (password %q)", created, seedPassword)
}
