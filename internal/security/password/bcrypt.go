package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmpty = errors.New("password: empty")

// Cost es el costo bcrypt usado al hashear; los hashes existentes conservan el suyo.
var Cost = bcrypt.DefaultCost

func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara en tiempo constante; un hash malformado es simplemente false.
func Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
