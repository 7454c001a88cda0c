package services

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"valid", "password1", false},
		{"too short", "pass1", true},
		{"no digit", "passwordonly", true},
		{"exactly eight with digit", "abcdefg1", false},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.pw)
			if tc.wantErr && err == nil {
				t.Errorf("Expected error for %q", tc.pw)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error for %q: %v", tc.pw, err)
			}
		})
	}
}

func TestEmailRegex(t *testing.T) {
	valid := []string{"user@example.com", "a.b+tag@sub.domain.org"}
	invalid := []string{"", "plainstring", "@no-local.com", "user@", "user@host"}

	for _, e := range valid {
		if !emailRegex.MatchString(e) {
			t.Errorf("Expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if emailRegex.MatchString(e) {
			t.Errorf("Expected %q to be invalid", e)
		}
	}
}
