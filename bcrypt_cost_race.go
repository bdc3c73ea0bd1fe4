//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// race builds run bcrypt several times slower, keep hashing cheap there
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
