package yetichat

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation     = "VALIDATION_ERROR"
	TextCodeNotInitialized = "NOT_INITIALIZED"
	TextCodeConfig         = "CONFIG_ERROR"
	TextCodePlatform       = "PLATFORM_ERROR"
	TextCodeProvisioning   = "PROVISIONING_ERROR"
	TextCodeNetwork        = "NETWORK_ERROR"
	TextCodeUIDTaken       = "UID_TAKEN"
)

// Platform error codes understood by the gateway and the provisioning client
const (
	CodeUIDNotFound         = "ERR_UID_NOT_FOUND"
	CodeUIDAlreadyExists    = "ERR_UID_ALREADY_EXISTS"
	CodeWrongCredentials    = "ERR_WRONG_CREDENTIALS"
	CodeInternetUnavailable = "ERR_INTERNET_UNAVAILABLE"
	CodeAuthTokenNotFound   = "ERR_AUTH_TOKEN_NOT_FOUND"
	CodeAppNotFound         = "ERR_APP_NOT_FOUND"
)

const (
	MsgNotInitialized     = "CometChat not initialized. Call initialize() first."
	MsgMissingCredentials = "Missing required CometChat credentials"
	MsgUIDTaken           = "User ID already taken. Please choose a different User ID."
	MsgLoginFailed        = "Failed to login user"
	MsgLogoutFailed       = "Failed to logout user"
	MsgCreateUserFailed   = "Failed to create user"
	MsgNetworkError       = "Network error during user creation"
)

var platformMessages = map[string]string{
	CodeUIDNotFound:         "User not found. The user might need to be created first.",
	CodeWrongCredentials:    "Invalid credentials. Please check your authentication key.",
	CodeInternetUnavailable: "No internet connection. Please check your network.",
	CodeAuthTokenNotFound:   "Authentication token not found. Please check your configuration.",
	CodeAppNotFound:         "App not found. Please check your App ID.",
}

// PlatformError captures a failure reported by the chat platform.
type PlatformError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *PlatformError) Error() string {
	if e == nil {
		return "platform error"
	}
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	case e.Err != nil:
		return e.Err.Error()
	}
	return "platform error"
}

func (e *PlatformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewValidationError returns a validation failure carrying a user facing message
func NewValidationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}

func newNotInitializedError() *goerrors.Error {
	return goerrors.New(MsgNotInitialized, goerrors.CategoryOperation).
		WithTextCode(TextCodeNotInitialized).
		WithCode(goerrors.CodeInternal)
}

func newConfigError(missing []string) *goerrors.Error {
	return goerrors.New(MsgMissingCredentials, goerrors.CategoryBadInput).
		WithTextCode(TextCodeConfig).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"missing": missing})
}

func newUIDTakenError(uid string) *goerrors.Error {
	return goerrors.New(MsgUIDTaken, goerrors.CategoryConflict).
		WithTextCode(TextCodeUIDTaken).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"uid": uid})
}

func newProvisioningError(message string, status int, code string) *goerrors.Error {
	if message == "" {
		message = MsgCreateUserFailed
	}
	meta := map[string]any{"status": status}
	if code != "" {
		meta["code"] = code
	}
	return goerrors.New(message, goerrors.CategoryExternal).
		WithTextCode(TextCodeProvisioning).
		WithCode(status).
		WithMetadata(meta)
}

func newNetworkError(source error) *goerrors.Error {
	err := goerrors.New(MsgNetworkError, goerrors.CategoryExternal).
		WithTextCode(TextCodeNetwork)
	err.Source = source
	return err
}

// mapPlatformError turns a platform failure into the message a user should see.
func mapPlatformError(err error, fallback string) *goerrors.Error {
	if err == nil {
		return nil
	}

	message := fallback
	meta := map[string]any{}

	var perr *PlatformError
	if errors.As(err, &perr) && perr != nil {
		if perr.Code != "" {
			meta["code"] = perr.Code
			if known, ok := platformMessages[perr.Code]; ok {
				message = known
			} else if perr.Message != "" {
				message = perr.Message
			} else {
				message = "CometChat error: " + perr.Code
			}
		} else if perr.Message != "" {
			message = perr.Message
		}
		if perr.Status != 0 {
			meta["status"] = perr.Status
		}
	} else if err.Error() != "" {
		message = err.Error()
	}

	out := goerrors.New(message, goerrors.CategoryExternal).
		WithTextCode(TextCodePlatform).
		WithMetadata(meta)
	out.Source = err
	return out
}

// rawPlatformError keeps the platform's own message, used where no friendly mapping applies.
func rawPlatformError(err error, fallback string) *goerrors.Error {
	if err == nil {
		return nil
	}

	message := fallback
	meta := map[string]any{}

	var perr *PlatformError
	if errors.As(err, &perr) && perr != nil {
		if perr.Message != "" {
			message = perr.Message
		}
		if perr.Code != "" {
			meta["code"] = perr.Code
		}
	} else if err.Error() != "" {
		message = err.Error()
	}

	out := goerrors.New(message, goerrors.CategoryExternal).
		WithTextCode(TextCodePlatform).
		WithMetadata(meta)
	out.Source = err
	return out
}

// ErrorMessage returns the human readable message of err, the value stored in AuthState.Error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		return rich.Message
	}
	return err.Error()
}

// PlatformCode returns the platform error code carried by err, if any.
func PlatformCode(err error) string {
	var perr *PlatformError
	if errors.As(err, &perr) && perr != nil {
		return perr.Code
	}
	return ""
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsValidationError reports whether err was produced by input validation
func IsValidationError(err error) bool { return hasTextCode(err, TextCodeValidation) }

// IsNotInitializedError reports whether a session call ran before initialization
func IsNotInitializedError(err error) bool { return hasTextCode(err, TextCodeNotInitialized) }

// IsConfigError reports missing platform credentials
func IsConfigError(err error) bool { return hasTextCode(err, TextCodeConfig) }

// IsPlatformError reports a failure returned by the chat platform
func IsPlatformError(err error) bool { return hasTextCode(err, TextCodePlatform) }

// IsProvisioningError reports a failed user creation call
func IsProvisioningError(err error) bool { return hasTextCode(err, TextCodeProvisioning) }

// IsNetworkError reports a transport level failure
func IsNetworkError(err error) bool { return hasTextCode(err, TextCodeNetwork) }

// IsUIDTakenError reports a registration collision
func IsUIDTakenError(err error) bool { return hasTextCode(err, TextCodeUIDTaken) }
