package yetichat

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MinUIDLength  = 3
	MaxUIDLength  = 100
	MaxNameLength = 100
)

const (
	MsgUIDEmpty     = "UID cannot be empty"
	MsgUIDTooShort  = "UID must be at least 3 characters long"
	MsgUIDTooLong   = "UID cannot exceed 100 characters"
	MsgUIDCharset   = "UID can only contain letters, numbers, hyphens, and underscores"
	MsgNameEmpty    = "Name cannot be empty."
	MsgNameTooLong  = "Name is too long (maximum 100 characters)."
	msgBlankDefault = "value cannot be blank"
)

var uidPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// rules run in order, the first failure wins
var uidRules = []validation.Rule{
	notBlank(MsgUIDEmpty),
	validation.RuneLength(MinUIDLength, 0).Error(MsgUIDTooShort),
	validation.RuneLength(0, MaxUIDLength).Error(MsgUIDTooLong),
	validation.Match(uidPattern).Error(MsgUIDCharset),
}

// ValidateUID checks a user id against the login rules
func ValidateUID(uid string) error {
	if err := validation.Validate(uid, uidRules...); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// ValidateName checks a display name used on registration
func ValidateName(name string) error {
	err := validation.Validate(strings.TrimSpace(name),
		notBlank(MsgNameEmpty),
		validation.RuneLength(0, MaxNameLength).Error(MsgNameTooLong),
	)
	if err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

func notBlank(message string) validation.Rule {
	if message == "" {
		message = msgBlankDefault
	}
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_blank", message)
		}
		return nil
	})
}
