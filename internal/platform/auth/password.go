package auth

import (
	"github.com/alexedwards/argon2id"
)

// PasswordHasher wraps argon2id with parameters supplied by configuration.
type PasswordHasher struct {
	params *argon2id.Params
}

func NewPasswordHasher(memoryKiB, iterations uint32, parallelism uint8) *PasswordHasher {
	return &PasswordHasher{
		params: &argon2id.Params{
			Memory:      memoryKiB,
			Iterations:  iterations,
			Parallelism: parallelism,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, h.params)
}

func (h *PasswordHasher) Compare(password, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, hash)
}
