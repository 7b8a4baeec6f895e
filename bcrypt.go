package castlegate

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	// Malformed stored hashes surface as the same mismatch error so callers
	// cannot tell a corrupt record from a wrong password.
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// SetPassword hashes plaintext into the account. When the plaintext already
// matches the stored hash the account is left untouched, so an unchanged
// password never burns a bcrypt round or churns the stored hash.
func SetPassword(account *Account, plaintext string) error {
	if account.PasswordHash != "" {
		if err := ComparePasswordAndHash(plaintext, account.PasswordHash); err == nil {
			return nil
		}
	}

	hash, err := HashPassword(plaintext)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	return nil
}
