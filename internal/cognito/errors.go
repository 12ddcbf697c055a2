package cognito

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Sentinel errors for Cognito operations.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrNoCredentials         = errors.New("no credentials configured")
)

// mapAWSError converts AWS SDK errors to cognito sentinel errors.
func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}

	var sentinel error
	switch apiErr.ErrorCode() {
	case "UserNotFoundException":
		sentinel = ErrUserNotFound
	case "UserNotConfirmedException":
		sentinel = ErrUserNotConfirmed
	case "NotAuthorizedException":
		sentinel = ErrNotAuthorized
	case "TooManyRequestsException", "LimitExceededException":
		sentinel = ErrTooManyRequests
	case "PasswordResetRequiredException":
		sentinel = ErrPasswordResetRequired
	case "InvalidParameterException":
		sentinel = ErrInvalidParameter
	default:
		return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), sentinel)
}
