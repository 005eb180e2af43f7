package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// NewDummyHash hashes a throwaway password at cost. Comparing against it
// takes as long as checking a real password hashed at the same cost.
func NewDummyHash(cost int) (string, error) {
	return HashPassword("not-a-real-password", cost)
}

// BurnPasswordCheck compares password against dummyHash and discards the result.
func BurnPasswordCheck(dummyHash, password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
