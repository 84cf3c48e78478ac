// Package connectivity turns raw transport, backend and auth failures
// into the small taxonomy the UI layer branches on.
package connectivity

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/abhisek/topiq/internal/auth"
)

// Kind is the classified failure category.
type Kind int

const (
	// KindNoConnectivity means the transport could not reach the backend.
	KindNoConnectivity Kind = iota

	// KindAuthRejected means the auth provider refused the credentials;
	// the outcome message is the user-facing reason.
	KindAuthRejected

	// KindCredentialConflict means a username collision at sign-up. The
	// caller is responsible for rolling back the partial session.
	KindCredentialConflict

	// KindDataError covers everything else: malformed responses and
	// unexpected backend errors.
	KindDataError
)

func (k Kind) String() string {
	switch k {
	case KindNoConnectivity:
		return "no_connectivity"
	case KindAuthRejected:
		return "auth_rejected"
	case KindCredentialConflict:
		return "credential_conflict"
	default:
		return "data_error"
	}
}

// Outcome is the classification of one failed operation.
type Outcome struct {
	Kind    Kind
	Message string
}

// connectivityHints are message fragments that indicate the network, not
// the credentials or the data, is the problem.
var connectivityHints = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"timeout",
	"socket",
	"broken pipe",
}

// Classify maps err onto the taxonomy. Rules apply in order: transport
// failures first, then auth errors, then username collisions, then the
// data-error catch-all.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Kind: KindDataError}
	}

	if isTransportFailure(err) {
		return Outcome{Kind: KindNoConnectivity, Message: "no internet connection"}
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		if hasConnectivityHint(authErr.Error()) {
			return Outcome{Kind: KindNoConnectivity, Message: "no internet connection"}
		}
		return Outcome{Kind: KindAuthRejected, Message: authErr.Message}
	}

	if isUsernameConflict(err) {
		return Outcome{Kind: KindCredentialConflict, Message: "username is already taken"}
	}

	return Outcome{Kind: KindDataError, Message: err.Error()}
}

// IsOffline reports whether err classifies as a connectivity failure.
func IsOffline(err error) bool {
	return Classify(err).Kind == KindNoConnectivity
}

func isTransportFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return hasConnectivityHint(err.Error())
}

func hasConnectivityHint(msg string) bool {
	msg = strings.ToLower(msg)
	for _, hint := range connectivityHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// isUsernameConflict detects the profiles.username uniqueness violation.
// modernc.org/sqlite reports constraint errors by message, so this is a
// string match on the constraint name.
func isUsernameConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, "username")
}
