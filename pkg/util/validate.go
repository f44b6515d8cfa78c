package util

import "strings"

// Ranges accepted by the bridge settings
const (
	MaxSTPPriority  = 65535
	MaxForwardDelay = 30
	MinPVID         = 1
	MaxPVID         = 4094
)

// Linux IFNAMSIZ minus the trailing NUL
const maxIfnameLen = 15

// ValidateSTPPriority checks an STP bridge priority (0 to 65535)
func ValidateSTPPriority(priority int) error {
	if priority < 0 || priority > MaxSTPPriority {
		return NewParameterError("stp-priority", "must be between 0 and %d, got %d", MaxSTPPriority, priority)
	}
	return nil
}

// ValidateForwardDelay checks an STP forward delay in seconds (0 to 30)
func ValidateForwardDelay(seconds int) error {
	if seconds < 0 || seconds > MaxForwardDelay {
		return NewParameterError("fdelay", "must be between 0 and %d, got %d", MaxForwardDelay, seconds)
	}
	return nil
}

// ValidatePVID checks a default port VLAN ID (1 to 4094)
func ValidatePVID(pvid int) error {
	if pvid < MinPVID || pvid > MaxPVID {
		return NewParameterError("vlan-default-pvid", "must be between %d and %d, got %d", MinPVID, MaxPVID, pvid)
	}
	return nil
}

// ValidateInterfaceName checks a Linux interface name for the named option
func ValidateInterfaceName(field, name string) error {
	if name == "" {
		return NewParameterError(field, "must not be empty")
	}
	if len(name) > maxIfnameLen {
		return NewParameterError(field, "must be at most %d characters, got %d", maxIfnameLen, len(name))
	}
	if strings.ContainsAny(name, "/ \t\n") {
		return NewParameterError(field, "must not contain slashes or whitespace")
	}
	return nil
}

// ParseYesNo converts a yes/no option value to a bool
func ParseYesNo(field, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, NewParameterError(field, "must be yes or no, got %q", value)
}
