package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// PasswordProblems lists every rule the password breaks: at least six
// characters with a digit, a lower-case and an upper-case letter.
func PasswordProblems(pw string) []string {
	var problems []string
	if len([]rune(pw)) < minPasswordLength {
		problems = append(problems, "Passwords must be at least 6 characters.")
	}
	if !strings.ContainsFunc(pw, unicode.IsDigit) {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if !strings.ContainsFunc(pw, unicode.IsLower) {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !strings.ContainsFunc(pw, unicode.IsUpper) {
		problems = append(problems, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return problems
}

func hashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
