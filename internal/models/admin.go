package models

import (
	"fmt"

	"github.com/elithrar/simple-scrypt"
)

// Admin holds the single shared admin credential. There is no per-admin identity -
// one PIN unlocks the management view, which is the entire authentication surface
// of the application.
type Admin struct {
	// The hashed PIN used for unlocking the admin view
	PINHash string
}

// SetPIN creates a hash from the incoming PIN and stores it in the admin's
// PINHash property
func (a *Admin) SetPIN(pin string) error {
	hash, err := scrypt.GenerateFromPassword([]byte(pin), scrypt.DefaultParams)
	if err != nil {
		return fmt.Errorf("SetPIN: Error during PIN hashing: %v", err)
	}
	// The library already uses a string encoding here - so there is no need to encode further
	a.PINHash = string(hash)
	return nil
}

// CheckPIN checks if the given PIN corresponds to the stored hash.
// It returns an error if the PIN does not match or the stored hash cannot be parsed
func (a *Admin) CheckPIN(pin string) error {
	return scrypt.CompareHashAndPassword([]byte(a.PINHash), []byte(pin))
}
