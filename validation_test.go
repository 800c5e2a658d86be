package main

import "testing"

func TestValidationErrorsCollect(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Error("fresh collector should be empty")
	}

	requireField(ve, "name", "  ")
	validateEnum(ve, "status", "shredded", validRequestStatuses)
	validatePhone(ve, "contact_phone", "123-456")
	validateDate(ve, "preferred_date", "not-a-date")
	validateEmail(ve, "email", "nope")
	validateMaxLength(ve, "notes", "abcdef", 3)

	if len(ve.Errors) != 6 {
		t.Fatalf("expected 6 errors, got %d: %s", len(ve.Errors), ve.Error())
	}

	m := ve.FieldMap()
	if m["name"] != "is required" {
		t.Errorf("name error = %q", m["name"])
	}
	if m["contact_phone"] != "must be exactly 10 digits" {
		t.Errorf("phone error = %q", m["contact_phone"])
	}
}

func TestValidationErrorsFieldMapFirstWins(t *testing.T) {
	ve := &ValidationErrors{}
	ve.Add("status", "first")
	ve.Add("status", "second")
	if ve.FieldMap()["status"] != "first" {
		t.Error("first message per field should win")
	}
}

func TestValidatorsAcceptValidInput(t *testing.T) {
	ve := &ValidationErrors{}
	requireField(ve, "name", "ThinkPad")
	validateEnum(ve, "status", "pickup_scheduled", validRequestStatuses)
	validateEnum(ve, "condition", "", validConditions) // optional when empty
	validatePhone(ve, "contact_phone", "9876543210")
	validateDate(ve, "preferred_date", "2026-09-15")
	validateEmail(ve, "email", "someone@example.com")
	validateEmail(ve, "email2", "")
	validateMaxLength(ve, "notes", "ok", 10)

	if ve.HasErrors() {
		t.Errorf("unexpected errors: %s", ve.Error())
	}
}
