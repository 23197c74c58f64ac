package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// dummyHash is compared against when a login names an unknown account, so both paths cost one bcrypt run.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcryptCost)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func burnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
