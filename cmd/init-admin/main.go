package main

import (
	"fmt"
	"os"

	"ai_sdlc/internal/auth"
	"ai_sdlc/internal/store"
)

// init-admin produces the two secrets the gateway needs before first start:
// the bcrypt hash for ADMIN_PASSWORD_HASH and a fresh AES key for
// CREDENTIALS_ENCRYPTION_KEY.
func main() {
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")
	if password == "" {
		fmt.Fprintf(os.Stderr, "ERROR: ADMIN_BOOTSTRAP_PASSWORD must be set\n")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "ERROR: Password must be at least 8 characters long\n")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	encryptionKey, err := store.GenerateKey(32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to generate encryption key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Add the following to your environment (or .env file):")
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	fmt.Printf("CREDENTIALS_ENCRYPTION_KEY=%s\n", encryptionKey)
	fmt.Println("\nFor security, unset ADMIN_BOOTSTRAP_PASSWORD afterwards.")
}
