package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost có thể hạ xuống bcrypt.MinCost trong test.
var PasswordCost = bcrypt.DefaultCost

var ErrPasswordTooLong = errors.New("mật khẩu vượt quá 72 byte")

func HashPassword(raw string) (string, error) {
	if len(raw) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordCost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	if hash == "" || raw == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
