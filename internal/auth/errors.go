package auth

import "errors"

var (
	// ErrInvalidCredentials is the AuthFailure surfaced inline on the login page.
	ErrInvalidCredentials = errors.New("auth: invalid login credentials")
	// ErrSessionMissing means the request carried no session cookie.
	ErrSessionMissing = errors.New("auth: session missing")
	// ErrInvalidSession means the cookie was present but did not verify.
	ErrInvalidSession = errors.New("auth: invalid session")
	// ErrUserNotFound is returned by repositories on a lookup miss.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrUnknownProvider is returned for an OAuth provider that is not configured.
	ErrUnknownProvider = errors.New("auth: unknown oauth provider")
	// ErrIncompleteProfile means the provider returned no usable email.
	ErrIncompleteProfile = errors.New("auth: oauth profile has no email")
	// ErrSessionSecretRequired is returned when sessions are built without a key.
	ErrSessionSecretRequired = errors.New("auth: session secret required")
)

const (
	// InvalidCredentialsMessage is shown next to the login form.
	InvalidCredentialsMessage = "Invalid login credentials"
	// UnexpectedErrorMessage is shown when sign-in fails for any other reason.
	UnexpectedErrorMessage = "An unexpected system error occurred."
)

// ProviderFailureMessage is shown when an OAuth round trip cannot start or finish.
func ProviderFailureMessage(provider string) string {
	return "Failed to initialize " + provider + " authentication."
}
