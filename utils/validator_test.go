package utils

import (
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"mt@premiummotors.in",
		"rajesh.kumar@premiummotors.in",
		"admin+portal@vw.in",
	}
	invalid := []string{
		"",
		"not-an-email",
		"missing@domain",
		"@vw.in",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidVIN(t *testing.T) {
	valid := []string{
		"WVWZZZ3CZWE123456",
		"wvwzzz3czwe123456",
		"TMBJC9NE9N0123456",
	}
	invalid := []string{
		"",
		"SHORT",
		"WVWZZZ3CZWE1234567",  // 18 characters
		"IVWZZZ3CZWE123456",   // contains I
		"OVWZZZ3CZWE123456",   // contains O
		"QVWZZZ3CZWE123456",   // contains Q
		"WVWZZZ3CZWE12345-",
	}
	for _, vin := range valid {
		if !IsValidVIN(vin) {
			t.Errorf("IsValidVIN(%q) = false, want true", vin)
		}
	}
	for _, vin := range invalid {
		if IsValidVIN(vin) {
			t.Errorf("IsValidVIN(%q) = true, want false", vin)
		}
	}
}

func TestIsValidRegistrationNo(t *testing.T) {
	valid := []string{
		"DL01AB1234",
		"dl01ab1234",
		"MH12A4567",
		"DL 01 AB 1234",
	}
	invalid := []string{
		"",
		"12345",
		"DL01ABC1234",
		"D101AB1234",
	}
	for _, reg := range valid {
		if !IsValidRegistrationNo(reg) {
			t.Errorf("IsValidRegistrationNo(%q) = false, want true", reg)
		}
	}
	for _, reg := range invalid {
		if IsValidRegistrationNo(reg) {
			t.Errorf("IsValidRegistrationNo(%q) = true, want false", reg)
		}
	}
}

func TestIsValidPartNumber(t *testing.T) {
	if !IsValidPartNumber("04E145721B") {
		t.Error("IsValidPartNumber(04E145721B) = false, want true")
	}
	if IsValidPartNumber("04E-145-721") {
		t.Error("IsValidPartNumber(04E-145-721) = true, want false")
	}
	if IsValidPartNumber("") {
		t.Error("IsValidPartNumber(empty) = true, want false")
	}
}

func TestIsValidDISSTicket(t *testing.T) {
	if !IsValidDISSTicket("123456789") {
		t.Error("IsValidDISSTicket(123456789) = false, want true")
	}
	if IsValidDISSTicket("AB1234") {
		t.Error("IsValidDISSTicket(AB1234) = true, want false")
	}
}

func TestIsValidOTP(t *testing.T) {
	if !IsValidOTP("042615") {
		t.Error("IsValidOTP(042615) = false, want true")
	}
	if IsValidOTP("1234") {
		t.Error("IsValidOTP(1234) = true, want false")
	}
	if IsValidOTP("12345a") {
		t.Error("IsValidOTP(12345a) = true, want false")
	}
}

func TestDateChecks(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	tomorrow := time.Now().AddDate(0, 0, 1)

	if !IsDateInPast(yesterday) {
		t.Error("IsDateInPast(yesterday) = false, want true")
	}
	if IsDateInPast(tomorrow) {
		t.Error("IsDateInPast(tomorrow) = true, want false")
	}

	// Any moment earlier today still counts as not in the future.
	earlierToday := time.Now().Add(-time.Minute)
	if !IsDateNotFuture(earlierToday) {
		t.Error("IsDateNotFuture(earlier today) = false, want true")
	}
	if !IsDateNotFuture(yesterday) {
		t.Error("IsDateNotFuture(yesterday) = false, want true")
	}
	if IsDateNotFuture(tomorrow.Add(24 * time.Hour)) {
		t.Error("IsDateNotFuture(day after tomorrow) = true, want false")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeInput = %q, want %q", got, "helloworld")
	}
}
