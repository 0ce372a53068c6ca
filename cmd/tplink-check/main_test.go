package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swoga/tplink-check/api"
	"github.com/swoga/tplink-check/config"
)

const statusPage = `<script>
var max_port_num = 3;
var port_middle_num  = 16;
var all_info = {
state:[1,0,1,0,0],
link_status:[5,0,2,0,0],
pkts:[10,0,20,1,0,0,0,0,5,1,2,0,0,0]
};
var tip = "";
</script>`

const expectedReport = "OK: ports connected: 2/3 |" +
	" Port1Enabled=1 Port1LinkSpeed=12000000B Port1GoodTX=10c Port1BadTX=0c Port1GoodRX=20c Port1BadRX=1c" +
	" Port2Enabled=0 Port2LinkSpeed=0B Port2GoodTX=0c Port2BadTX=0c Port2GoodRX=0c Port2BadRX=0c" +
	" Port3Enabled=1 Port3LinkSpeed=0B Port3GoodTX=5c Port3BadTX=1c Port3GoodRX=2c Port3BadRX=0c" +
	" TotalGoodTX=15c TotalBadTX=1c TotalGoodRX=22c TotalBadRX=1c PortsConnected=2 TotalPorts=3"

// fakeSwitch accepts one user and remembers the login for every client.
type fakeSwitch struct {
	username  string
	password  string
	loginCode string
	page      string

	loggedIn atomic.Bool
	gets     atomic.Int32
	posts    atomic.Int32
}

func newFakeSwitch() *fakeSwitch {
	return &fakeSwitch{username: "admin", password: "secret", page: statusPage}
}

func (f *fakeSwitch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case api.StatusPagePath:
		f.gets.Add(1)
		if f.loggedIn.Load() {
			w.Write([]byte(f.page))
			return
		}
		w.Write([]byte("<html>login</html>"))
	case api.LoginPath:
		f.posts.Add(1)
		code := f.loginCode
		if code == "" {
			code = "1"
			if r.PostFormValue("username") == f.username && r.PostFormValue("password") == f.password {
				code = "0"
			}
		}
		if code == "0" {
			f.loggedIn.Store(true)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("<script>\nvar logonInfo = new Array(\n" + code + ",\n0,0);\n</script>"))
	default:
		http.NotFound(w, r)
	}
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckOK(t *testing.T) {
	fake := newFakeSwitch()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	code, stdout, _ := runArgs(t, "-H", srv.URL, "-a", "secret", "--password-dir", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Equal(t, expectedReport+"\n", stdout)
	assert.EqualValues(t, 1, fake.posts.Load())
}

func TestCheckExistingSessionSkipsLogin(t *testing.T) {
	fake := newFakeSwitch()
	fake.loggedIn.Store(true)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	code, stdout, _ := runArgs(t, "--hostname", srv.URL, "--password-dir", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Equal(t, expectedReport+"\n", stdout)
	assert.EqualValues(t, 1, fake.gets.Load())
	assert.EqualValues(t, 0, fake.posts.Load())
}

func TestCheckPasswordFile(t *testing.T) {
	fake := newFakeSwitch()
	fake.username = "monitor"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	dir := t.TempDir()
	files := config.PasswordFiles(dir, srv.URL)
	require.NoError(t, os.WriteFile(files[0], []byte("secret\n"), 0o600))

	code, stdout, _ := runArgs(t, "-H", srv.URL, "-u", "monitor", "--password-dir", dir)
	assert.Equal(t, 0, code, stdout)
	assert.Equal(t, expectedReport+"\n", stdout)
}

func TestCheckEnvironment(t *testing.T) {
	fake := newFakeSwitch()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	t.Setenv("TPLINK_HOSTNAME", srv.URL)
	t.Setenv("TPLINK_AUTHENTICATION", "secret")
	t.Setenv("TPLINK_PASSWORD_DIR", t.TempDir())

	code, stdout, _ := runArgs(t)
	assert.Equal(t, 0, code, stdout)
	assert.Equal(t, expectedReport+"\n", stdout)
}

func TestCheckWrongPassword(t *testing.T) {
	fake := newFakeSwitch()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	code, stdout, stderr := runArgs(t, "-H", srv.URL, "-a", "wrong", "--password-dir", t.TempDir())
	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN: login failed: The user name or the password is wrong.\n", stdout)
	assert.Contains(t, stderr, "check failed")
}

func TestCheckLoginTableFull(t *testing.T) {
	fake := newFakeSwitch()
	fake.loginCode = "3"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	code, stdout, _ := runArgs(t, "-H", srv.URL, "-a", "secret", "--password-dir", t.TempDir())
	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN: login failed: The number of the user that allowed to login has been full.\n", stdout)
	assert.EqualValues(t, 1, fake.gets.Load())
}

func TestCheckBrokenPage(t *testing.T) {
	fake := newFakeSwitch()
	fake.loggedIn.Store(true)
	fake.page = "var max_port_num = 3;\nstate:[1,1,1],\nlink_status:[5,5],\npkts:[]"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	code, stdout, _ := runArgs(t, "-H", srv.URL, "--password-dir", t.TempDir())
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: statistics page: count mismatch"), stdout)
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	address := srv.URL
	srv.Close()

	code, stdout, _ := runArgs(t, "-H", address, "--password-dir", t.TempDir())
	assert.Equal(t, 2, code)
	assert.True(t, strings.HasPrefix(stdout, "CRITICAL: GET "+address+api.StatusPagePath), stdout)
}

func TestCheckMissingHostname(t *testing.T) {
	code, stdout, _ := runArgs(t, "--password-dir", t.TempDir())
	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN: no hostname given, use --hostname or TPLINK_HOSTNAME\n", stdout)
}

func TestCheckUnreadablePasswordFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".tplink"), 0o700))

	code, stdout, _ := runArgs(t, "-H", "10.0.0.2", "--password-dir", dir)
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: error reading password file"), stdout)
}
