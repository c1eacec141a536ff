package mocks

import "github.com/rfoster/tasklist-api/internal/service/auth"

// PlainPasswordHasher "hashes" by prefixing the password, so tests can assert
// against predictable values without paying bcrypt cost.
type PlainPasswordHasher struct {
	HashFn func(password string) (string, error)
}

var _ auth.PasswordHasher = (*PlainPasswordHasher)(nil)

func (h *PlainPasswordHasher) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "plain:" + password, nil
}

// PlainPasswordVerifier accepts hashes produced by PlainPasswordHasher.
type PlainPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
}

var _ auth.PasswordVerifier = (*PlainPasswordVerifier)(nil)

func (v *PlainPasswordVerifier) Compare(hashedPassword, password string) error {
	if v.CompareFn != nil {
		return v.CompareFn(hashedPassword, password)
	}
	if hashedPassword != "plain:"+password {
		return auth.ErrInvalidCredentials
	}
	return nil
}
