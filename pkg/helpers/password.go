package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	return hashPasswordCost(plain, bcrypt.DefaultCost)
}

// HashPasswordFast uses the minimum bcrypt cost; only for seeds and tests.
func HashPasswordFast(plain string) (string, error) {
	return hashPasswordCost(plain, bcrypt.MinCost)
}

func hashPasswordCost(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
