package main

import (
	"log"
	"os"

	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Utility kecil untuk reset password user lewat CLI:
//
//	go run ./cmd/reset-password <email> <new-password>
func main() {
	if len(os.Args) != 3 {
		log.Fatal("Usage: reset-password <email> <new-password>")
	}
	email := os.Args[1]
	newPassword := os.Args[2]

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Find user
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		log.Fatalf("❌ User %s not found in database: %v", email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update password and rotate token version to kill active sessions
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": uuid.New().String(),
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Success! Password for %s has been reset", email)
}
