package utils_test

import (
	"testing"

	"github.com/festivalpos/distribution-engine/pkg/utils"
)

func TestHashPassword(t *testing.T) {
	password := "securePassword123"
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Errorf("HashPassword returned an error for valid password: %v", err)
	}
	if len(hash) == 0 {
		t.Error("HashPassword returned an empty hash for valid password")
	}

	_, err = utils.HashPassword("")
	if err == nil {
		t.Error("HashPassword did not return an error for empty password")
	}
	if err != nil && err.Error() != "password is empty" {
		t.Errorf("HashPassword returned unexpected error for empty password: %v", err)
	}

	hash1, _ := utils.HashPassword(password)
	hash2, _ := utils.HashPassword(password)
	if string(hash1) == string(hash2) {
		t.Error("HashPassword produced identical hashes for the same password")
	}

	longPassword := "ThisIsAReasonablyLongPasswordThatShouldWorkWithBcrypt123456789"
	hash3, err := utils.HashPassword(longPassword)
	if err != nil {
		t.Errorf("HashPassword returned an error for long password: %v", err)
	}
	if len(hash3) == 0 {
		t.Error("HashPassword returned an empty hash for long password")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "securePassword123"
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password for test: %v", err)
	}

	if err := utils.VerifyPassword(password, string(hash)); err != nil {
		t.Errorf("VerifyPassword returned an error for valid password and hash: %v", err)
	}

	wrongPassword := "wrongPassword123"
	if err := utils.VerifyPassword(wrongPassword, string(hash)); err == nil {
		t.Error("VerifyPassword did not return an error for incorrect password")
	}

	if err := utils.VerifyPassword("", string(hash)); err != utils.ErrEmptyPassword {
		t.Errorf("VerifyPassword returned unexpected error for empty password: %v", err)
	}

	if err := utils.VerifyPassword(password, ""); err != utils.ErrEmptyHash {
		t.Errorf("VerifyPassword returned unexpected error for empty hash: %v", err)
	}
}
