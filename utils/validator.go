// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// 17 characters, alphanumeric, excluding I, O and Q.
	vinRegex = regexp.MustCompile(`^(?i)[A-HJ-NPR-Z0-9]{17}$`)
	// Indian registration plate: two letters, two digits, one or two
	// letters, four digits.
	regNoRegex  = regexp.MustCompile(`^(?i)[A-Z]{2}\d{2}[A-Z]{1,2}\d{4}$`)
	partNoRegex = regexp.MustCompile(`^(?i)[A-Z0-9]+$`)
	otpRegex    = regexp.MustCompile(`^\d{6}$`)
	digitsRegex = regexp.MustCompile(`^\d+$`)
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidVIN checks a vehicle identification number.
func IsValidVIN(vin string) bool {
	return vinRegex.MatchString(vin)
}

// IsValidRegistrationNo checks a vehicle registration number, ignoring spaces.
func IsValidRegistrationNo(regNo string) bool {
	return regNoRegex.MatchString(strings.ReplaceAll(regNo, " ", ""))
}

// IsValidPartNumber checks a damage part number (letters and digits only).
func IsValidPartNumber(partNo string) bool {
	return partNoRegex.MatchString(partNo)
}

// IsValidDISSTicket checks a DISS ticket number (numeric).
func IsValidDISSTicket(ticketNo string) bool {
	return digitsRegex.MatchString(ticketNo)
}

// IsValidOTP checks a one-time password (6 digits).
func IsValidOTP(otp string) bool {
	return otpRegex.MatchString(otp)
}

// IsDateInPast reports whether t is strictly before now.
func IsDateInPast(t time.Time) bool {
	return t.Before(time.Now())
}

// IsDateNotFuture reports whether t falls on or before the end of today.
func IsDateNotFuture(t time.Time) bool {
	y, m, d := time.Now().Date()
	endOfToday := time.Date(y, m, d, 23, 59, 59, 999999999, time.Local)
	return !t.After(endOfToday)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
