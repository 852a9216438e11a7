package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the plain text password using bcrypt. Each call salts
// freshly, so the same input never produces the same digest twice.
func HashPassword(plain string) (string, error) {
	return HashPasswordCost(plain, bcrypt.DefaultCost)
}

// HashPasswordCost hashes with an explicit bcrypt cost. Tests use
// bcrypt.MinCost to stay fast.
func HashPasswordCost(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt digest with a plain password in constant
// time. Any mismatch or malformed digest yields false.
func CheckPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
