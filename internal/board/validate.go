package board

import (
	"regexp"
	"unicode/utf8"
)

// MaxDescriptionLen bounds listing descriptions, in characters.
const MaxDescriptionLen = 500

// Accepted contact formats: local phone, international phone, or a handle.
var (
	localPhoneRe = regexp.MustCompile(`^0\d{9}$`)
	intlPhoneRe  = regexp.MustCompile(`^\+380\d{9}$`)
	handleRe     = regexp.MustCompile(`^@\w{5,32}$`)
)

// ValidateDescription checks the 1..MaxDescriptionLen character bound.
func ValidateDescription(text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return &ValidationError{Reason: "description must not be empty"}
	}
	if n > MaxDescriptionLen {
		return &ValidationError{Reason: "description is too long (max 500 characters)"}
	}
	return nil
}

// ValidateContact checks the contact format. The empty string is always
// accepted: it is the explicit "skip" value.
func ValidateContact(contact string) error {
	if contact == "" {
		return nil
	}
	if localPhoneRe.MatchString(contact) ||
		intlPhoneRe.MatchString(contact) ||
		handleRe.MatchString(contact) {
		return nil
	}
	return &ValidationError{Reason: "contact must be a phone number (0XXXXXXXXX or +380XXXXXXXXX) or a @handle"}
}
