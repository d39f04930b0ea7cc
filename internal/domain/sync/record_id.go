package sync

import (
	"errors"
	"fmt"
	"strings"
)

// recordIDDelimiter separates the server scope from the remote product ID in
// a combined identity string. It must never appear inside a scope.
const recordIDDelimiter = ":"

// ErrInvalidRecordID indicates a combined identity string that cannot be
// split into scope and remote ID.
var ErrInvalidRecordID = errors.New("sync: invalid record identity")

// FormatRecordID builds the externally-visible combined identity
// "<server-scope>:<remote-id>".
func FormatRecordID(scope, remoteID string) string {
	return fmt.Sprintf("%s%s%s", scope, recordIDDelimiter, remoteID)
}

// ParseRecordID splits a combined identity into server scope and remote ID.
// The remote ID may itself contain the delimiter; the scope may not.
func ParseRecordID(recordID string) (scope, remoteID string, err error) {
	idx := strings.Index(recordID, recordIDDelimiter)
	if idx <= 0 || idx == len(recordID)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRecordID, recordID)
	}
	return recordID[:idx], recordID[idx+1:], nil
}

// ValidScope reports whether a server scope is usable in a combined
// identity string.
func ValidScope(scope string) bool {
	return scope != "" && !strings.Contains(scope, recordIDDelimiter)
}
