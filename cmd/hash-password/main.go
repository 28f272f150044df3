package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/stemsi/dictant-backend/internal/service"
)

const minPasswordLength = 8

// hash-password prompts for the admin password and prints the bcrypt hash to
// put into ADMIN_PASSWORD_HASH.
func main() {
	fmt.Fprintln(os.Stderr, "=== Generate Admin Password Hash ===")

	password, err := prompt("Enter Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if len(password) < minPasswordLength {
		fmt.Fprintf(os.Stderr, "Error: Password must be at least %d characters\n", minPasswordLength)
		os.Exit(1)
	}

	confirm, err := prompt("Confirm Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if confirm != password {
		fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
		os.Exit(1)
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	return string(b), err
}
