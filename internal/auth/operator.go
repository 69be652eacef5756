package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Operator the single account allowed to use the service.
type Operator struct {
	username     string
	passwordHash string
	issuer       *Issuer
}

// NewOperator hashes password once at startup.
func NewOperator(username, password string, issuer *Issuer) (*Operator, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Operator{username: username, passwordHash: hash, issuer: issuer}, nil
}

// Login checks credentials and issues a token pair.
func (o *Operator) Login(username, password string) (TokenPair, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(o.username)) == 1
	passOK := CheckPasswordHash(password, o.passwordHash)
	if !userOK || !passOK {
		return TokenPair{}, ErrInvalidCredentials
	}
	return o.issuer.IssuePair(o.username)
}

// Refresh see Issuer.Refresh.
func (o *Operator) Refresh(refreshToken string) (TokenPair, error) {
	return o.issuer.Refresh(refreshToken)
}
