package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultUsername = "admin"

	sharedPasswordFile = ".tplink"
)

// PasswordFiles lists the files consulted for a switch, in order.
func PasswordFiles(dir, host string) []string {
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.TrimSuffix(host, "/")
	return []string{
		filepath.Join(dir, "."+host+"_password"),
		filepath.Join(dir, sharedPasswordFile),
	}
}

// ResolvePassword picks the password for host. An explicitly given password
// wins, then .<host>_password and .tplink in dir. Without any of them the
// password is empty.
func ResolvePassword(dir, host string, explicit *string) (string, error) {
	if explicit != nil {
		return *explicit, nil
	}
	for _, file := range PasswordFiles(dir, host) {
		password, found, err := readPasswordFile(file)
		if err != nil {
			return "", err
		}
		if found {
			return password, nil
		}
	}
	return "", nil
}

func readPasswordFile(file string) (string, bool, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading password file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), true, nil
}
