package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/swoga/tplink-check/api"
)

// Status is a monitoring plugin result, the value doubles as exit code.
type Status int

const (
	OK Status = iota
	Warning
	Critical
	Unknown
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// StatusFor classifies a failed check. An unreachable switch is critical,
// everything that only says the check itself could not run is unknown.
func StatusFor(err error) Status {
	if err == nil {
		return OK
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return Critical
	}
	return Unknown
}

// Failure renders err as a single plugin output line.
func Failure(err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	return fmt.Sprintf("%s: %s", StatusFor(err), msg)
}
