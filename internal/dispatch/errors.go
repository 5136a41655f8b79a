package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/teemow/mcp-google-workspace/internal/google"
)

// Kind classifies a failed invocation.
type Kind string

// Error kinds reported in ErrorDescriptor.Kind.
const (
	KindAuthentication        Kind = "authentication"
	KindTransientAuth         Kind = "transient_auth"
	KindAuthorizationRequired Kind = "authorization_required"
	KindUnknownCommand        Kind = "unknown_command"
	KindInvalidArgument       Kind = "invalid_argument"
	KindDuplicateCommand      Kind = "duplicate_command"
	KindVendorAPI             Kind = "vendor_api"
	KindCanceled              Kind = "canceled"
	KindInternal              Kind = "internal"
)

// ErrRegistryFrozen is returned by Register after Freeze.
var ErrRegistryFrozen = errors.New("command registry is frozen")

// UnknownCommandError reports a command name that is not registered.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// DuplicateCommandError reports a second registration under the same name.
type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}

// InvalidArgumentError reports a missing, unknown or malformed parameter.
type InvalidArgumentError struct {
	Param    string
	Expected string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	msg := fmt.Sprintf("invalid argument %q: expected %s", e.Param, e.Expected)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// VendorAPIError is a failed Google API call in vendor-neutral form.
type VendorAPIError struct {
	StatusCode int
	Reason     string
	Message    string
	Retryable  bool
}

func (e *VendorAPIError) Error() string {
	var b strings.Builder
	b.WriteString("google API error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " %d", e.StatusCode)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// Reasons under which a 403 means "slow down" rather than "forbidden".
var retryableReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"RATE_LIMIT_EXCEEDED":   true,
}

// ErrorDescriptor is the machine-readable form of a failure.
type ErrorDescriptor struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Param      string `json:"param,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"statusCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	AuthURL    string `json:"authUrl,omitempty"`
}

func (d *ErrorDescriptor) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// NormalizeError converts errors from the Google client libraries and the
// HTTP transport into *VendorAPIError. Other errors are returned unchanged.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	var vendor *VendorAPIError
	if errors.As(err, &vendor) {
		return vendor
	}
	if isAuthError(err) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		for _, item := range gerr.Errors {
			if item.Reason != "" {
				reason = item.Reason
				break
			}
		}
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &VendorAPIError{
			StatusCode: gerr.Code,
			Reason:     reason,
			Message:    msg,
			Retryable:  retryableStatus(gerr.Code, reason, msg),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &VendorAPIError{Reason: "timeout", Message: err.Error(), Retryable: true}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && !errors.Is(err, context.Canceled) {
		if uerr.Timeout() {
			return &VendorAPIError{Reason: "timeout", Message: uerr.Error(), Retryable: true}
		}
		return &VendorAPIError{Reason: "transport", Message: uerr.Error()}
	}

	return err
}

// isAuthError reports credential store failures. They may wrap transport
// errors but keep their own kind.
func isAuthError(err error) bool {
	var (
		authReq    *google.AuthorizationRequiredError
		transient  *google.TransientAuthError
		authFailed *google.AuthenticationError
	)
	return errors.As(err, &authReq) || errors.As(err, &transient) || errors.As(err, &authFailed)
}

func retryableStatus(code int, reason, message string) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	case code == http.StatusForbidden:
		if retryableReasons[reason] {
			return true
		}
		lower := strings.ToLower(message)
		return strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota exceeded")
	}
	return false
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var vendor *VendorAPIError
	return errors.As(NormalizeError(err), &vendor) && vendor.Retryable
}

// Describe maps any error to an ErrorDescriptor.
func Describe(err error) *ErrorDescriptor {
	if err == nil {
		return nil
	}
	err = NormalizeError(err)

	var (
		desc       *ErrorDescriptor
		unknown    *UnknownCommandError
		duplicate  *DuplicateCommandError
		invalid    *InvalidArgumentError
		vendor     *VendorAPIError
		authReq    *google.AuthorizationRequiredError
		transient  *google.TransientAuthError
		authFailed *google.AuthenticationError
	)

	switch {
	case errors.As(err, &desc):
		return desc
	case errors.As(err, &invalid):
		return &ErrorDescriptor{Kind: KindInvalidArgument, Message: invalid.Error(), Param: invalid.Param, Expected: invalid.Expected}
	case errors.As(err, &unknown):
		return &ErrorDescriptor{Kind: KindUnknownCommand, Message: unknown.Error()}
	case errors.As(err, &duplicate):
		return &ErrorDescriptor{Kind: KindDuplicateCommand, Message: duplicate.Error()}
	case errors.As(err, &authReq):
		return &ErrorDescriptor{Kind: KindAuthorizationRequired, Message: authReq.Error(), AuthURL: authReq.URL}
	case errors.As(err, &transient):
		return &ErrorDescriptor{Kind: KindTransientAuth, Message: transient.Error(), Retryable: true}
	case errors.As(err, &authFailed):
		return &ErrorDescriptor{Kind: KindAuthentication, Message: authFailed.Error()}
	case errors.As(err, &vendor):
		return &ErrorDescriptor{
			Kind:       KindVendorAPI,
			Message:    vendor.Error(),
			Retryable:  vendor.Retryable,
			StatusCode: vendor.StatusCode,
			Reason:     vendor.Reason,
		}
	case errors.Is(err, context.Canceled):
		return &ErrorDescriptor{Kind: KindCanceled, Message: "invocation canceled"}
	default:
		return &ErrorDescriptor{Kind: KindInternal, Message: err.Error()}
	}
}
