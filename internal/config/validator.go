package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scale.baud")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// isUUID128 reports whether v is a UUID in the hyphenated 36-character
// form, the only one the BLE stack parses.
func isUUID128(v string) bool {
	if len(v) != 36 {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

// Validate checks the settings and returns every problem found.
func (s *Settings) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(s.Device.Name) == "" {
		errs = append(errs, ValidationError{"device.name", s.Device.Name, "must not be empty"})
	} else if len(s.Device.Name) > 29 {
		// 31-byte advertising payload minus the length and type bytes
		errs = append(errs, ValidationError{"device.name", s.Device.Name, "must fit in the advertising packet (29 bytes)"})
	}
	if !isUUID128(s.Device.ServiceUUID) {
		errs = append(errs, ValidationError{"device.service_uuid", s.Device.ServiceUUID, "must be a 128-bit UUID"})
	}
	if !isUUID128(s.Device.CharacteristicUUID) {
		errs = append(errs, ValidationError{"device.characteristic_uuid", s.Device.CharacteristicUUID, "must be a 128-bit UUID"})
	}

	switch s.Scale.Source {
	case SourceSerial:
		if s.Scale.Port == "" {
			errs = append(errs, ValidationError{"scale.port", s.Scale.Port, "required when scale.source is serial"})
		}
		if s.Scale.Baud <= 0 {
			errs = append(errs, ValidationError{"scale.baud", s.Scale.Baud, "must be positive"})
		}
	case SourceDemo:
	default:
		errs = append(errs, ValidationError{"scale.source", s.Scale.Source, "must be serial or demo"})
	}

	switch strings.ToUpper(s.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, ValidationError{"logging.level", s.Logging.Level, "must be DEBUG, INFO, WARN or ERROR"})
	}

	return errs
}
