package util

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSTPPriority(t *testing.T) {
	tests := []struct {
		priority int
		wantErr  bool
	}{
		{0, false},
		{32768, false},
		{65535, false},
		{-1, true},
		{65536, true},
		{70000, true},
	}

	for _, tt := range tests {
		err := ValidateSTPPriority(tt.priority)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSTPPriority(%d) error = %v, wantErr %v", tt.priority, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("ValidateSTPPriority(%d) should unwrap to ErrInvalidParameter", tt.priority)
		}
	}
}

func TestValidateForwardDelay(t *testing.T) {
	tests := []struct {
		seconds int
		wantErr bool
	}{
		{0, false},
		{15, false},
		{30, false},
		{-1, true},
		{31, true},
		{65535, true},
	}

	for _, tt := range tests {
		err := ValidateForwardDelay(tt.seconds)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateForwardDelay(%d) error = %v, wantErr %v", tt.seconds, err, tt.wantErr)
		}
	}
}

func TestValidatePVID(t *testing.T) {
	tests := []struct {
		pvid    int
		wantErr bool
	}{
		{1, false},
		{100, false},
		{4094, false},
		{0, true},
		{-5, true},
		{4095, true},
	}

	for _, tt := range tests {
		err := ValidatePVID(tt.pvid)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePVID(%d) error = %v, wantErr %v", tt.pvid, err, tt.wantErr)
		}
	}
}

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		ifname  string
		wantErr bool
	}{
		{"simple", "mybr0", false},
		{"max length", "abcdefghijklmno", false},
		{"empty", "", true},
		{"too long", "abcdefghijklmnop", true},
		{"slash", "br/0", true},
		{"space", "my br0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName("bridge-ifname", tt.ifname)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.ifname, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "bridge-ifname") {
				t.Errorf("error should name the field: %v", err)
			}
		})
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"no", false, false},
		{"Yes", true, false},
		{"NO", false, false},
		{"true", false, true},
		{"", false, true},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := ParseYesNo("stp", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseYesNo(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseYesNo(%q) = %v, want %v", tt.value, got, tt.want)
		}
		if err != nil && !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("ParseYesNo(%q) should unwrap to ErrInvalidParameter", tt.value)
		}
	}
}
