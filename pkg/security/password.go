package security

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks login credentials against stored bcrypt
// hashes. Account provisioning writes the hashes elsewhere, so only
// comparison lives here.
type PasswordVerifier interface {
	Compare(hashedPassword, password string) error
}

type bcryptVerifier struct{}

func NewBcryptVerifier() PasswordVerifier {
	return bcryptVerifier{}
}

func (bcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
