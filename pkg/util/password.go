package util

import "golang.org/x/crypto/bcrypt"

// hashCost sits above the bcrypt default; passwords are only checked at
// login so the extra work per hash is affordable.
const hashCost = 12

// HashPassword derives the bcrypt hash stored for a user's password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain password matches the stored hash
func VerifyPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
