package libsqldb

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseDSN converts the string form used with sql.Open into a Config. The
// DSN is the database name optionally followed by ?key=value options:
//
//	app.db
//	:memory:
//	libsql://db-org.turso.io?authToken=...
//	replica.db?sync_url=https://db-org.turso.io&auth_token=...
//
// Option keys accept both snake_case and the camelCase spelling Turso URLs
// use. "file:" URIs are passed through untouched; their query string belongs
// to SQLite.
func ParseDSN(dsn string) (Config, error) {
	if dsn == "" {
		return Config{}, ErrMissingName
	}
	if strings.HasPrefix(dsn, "file:") {
		return Config{Name: dsn}, nil
	}

	name := dsn
	query := ""
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		name, query = dsn[:i], dsn[i+1:]
	}

	cfg := Config{Name: name}
	if query == "" {
		return cfg, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return Config{}, fmt.Errorf("libsqldb: parse DSN options: %w", err)
	}
	for key, vals := range values {
		val := vals[len(vals)-1]
		switch key {
		case "auth_token", "authToken":
			cfg.AuthToken = val
		case "sync_url", "syncUrl":
			cfg.SyncURL = val
		case "encryption_key", "encryptionKey":
			cfg.EncryptionKey = val
		case "isolation_level", "isolationLevel":
			cfg.IsolationLevel = val
		case "local_file", "localFile":
			cfg.LocalFile = val
		case "timeout":
			d, err := parseTimeout(val)
			if err != nil {
				return Config{}, err
			}
			cfg.Timeout = d
		default:
			return Config{}, fmt.Errorf("libsqldb: unknown DSN option %q", key)
		}
	}
	return cfg, nil
}

// FormatDSN is the inverse of ParseDSN.
func FormatDSN(cfg Config) string {
	values := url.Values{}
	if cfg.AuthToken != "" {
		values.Set("auth_token", cfg.AuthToken)
	}
	if cfg.SyncURL != "" {
		values.Set("sync_url", cfg.SyncURL)
	}
	if cfg.EncryptionKey != "" {
		values.Set("encryption_key", cfg.EncryptionKey)
	}
	if cfg.IsolationLevel != "" {
		values.Set("isolation_level", cfg.IsolationLevel)
	}
	if cfg.LocalFile != "" {
		values.Set("local_file", cfg.LocalFile)
	}
	if cfg.Timeout != 0 {
		values.Set("timeout", cfg.Timeout.String())
	}
	if len(values) == 0 {
		return cfg.Name
	}
	return cfg.Name + "?" + values.Encode()
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds
// ("5", "2.5") for parity with drivers that take seconds.
func parseTimeout(val string) (time.Duration, error) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("libsqldb: invalid timeout %q", val)
}
