package api

import (
	"fmt"
	"regexp"
	"strconv"
)

// The logon.cgi response embeds the result as the first element of an array:
//
//	var logonInfo = new Array(
//	1,
//	0,0);
var logonInfoRE = regexp.MustCompile(`var logonInfo = new Array\(\r?\n\s*(\d),`)

const (
	loginSuccess = 0
)

var loginReasons = map[int]string{
	1: "The user name or the password is wrong.",
	2: "The user is not allowed to login.",
	3: "The number of the user that allowed to login has been full.",
	4: "The number of the login user has been full,it is allowed 16 people to login at the same time.",
	5: "The session is timeout. Please login again.",
}

// parseLoginStatus maps the logon.cgi body to nil on success or the error the
// switch reported.
func parseLoginStatus(body string) error {
	m := logonInfoRE.FindStringSubmatch(body)
	if m == nil {
		return fmt.Errorf("%w: no login status in logon.cgi response", ErrProtocolMismatch)
	}

	code, _ := strconv.Atoi(m[1])
	if code == loginSuccess {
		return nil
	}

	reason, ok := loginReasons[code]
	if !ok {
		reason = fmt.Sprintf("unexpected login status code %d", code)
	}
	return &AuthError{Code: code, Reason: reason}
}
