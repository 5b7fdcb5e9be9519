package libsqldb

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mode is the resolved connection mode for a configuration.
type Mode string

const (
	// ModeLocal is a plain SQLite file or an in-memory database.
	ModeLocal Mode = "local"
	// ModeRemote talks to a libSQL server (Turso or self-hosted sqld)
	// over HTTP or websocket.
	ModeRemote Mode = "remote"
	// ModeReplica is a local database file kept in sync with a remote
	// primary.
	ModeReplica Mode = "replica"
)

// DefaultLocalFile is the replica file used when a sync configuration does
// not name one.
const DefaultLocalFile = "local.db"

// DefaultTimeout applies when a configuration has no timeout.
const DefaultTimeout = 5 * time.Second

// DefaultIsolationLevel is the transaction mode used when none is
// configured. DEFERRED matches SQLite's own default BEGIN behavior.
const DefaultIsolationLevel = "DEFERRED"

// Config is the connection configuration surface. Every field is forwarded
// to the wrapped client libraries; nothing here changes query semantics.
type Config struct {
	// Name is the database to connect to: a local file path, ":memory:",
	// or a remote URL (libsql://, http(s)://, ws(s)://).
	Name string

	// AuthToken is the bearer credential for remote access.
	AuthToken string

	// SyncURL makes the connection an embedded replica syncing from this
	// remote URL. If Name itself is a remote URL, the replica stores data
	// in LocalFile and syncs from Name instead.
	SyncURL string

	// EncryptionKey enables at-rest encryption of the local database.
	// Only supported in embedded-replica builds.
	EncryptionKey string

	// Timeout is the connection/busy timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// IsolationLevel selects the BEGIN mode for transactions: DEFERRED,
	// IMMEDIATE, or EXCLUSIVE. Empty means DefaultIsolationLevel.
	IsolationLevel string

	// LocalFile is the replica file path used when syncing. Empty means
	// DefaultLocalFile.
	LocalFile string

	// TursoURL and TursoAuthToken are runtime-injected credential
	// overrides (typically from the environment). When TursoURL is set
	// the connection is forced into embedded-replica mode against
	// LocalFile regardless of Name.
	TursoURL       string
	TursoAuthToken string
}

// connParams is a fully resolved configuration: one mode, one database
// target, credentials, and session settings.
type connParams struct {
	Mode           Mode
	Database       string
	AuthToken      string
	SyncURL        string
	EncryptionKey  string
	Timeout        time.Duration
	IsolationLevel string
}

var remoteSchemes = []string{"libsql://", "http://", "https://", "ws://", "wss://"}

func isRemoteURL(name string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(name, scheme) {
			return true
		}
	}
	return false
}

// resolve validates the configuration and reduces it to connection
// parameters for one of the three modes.
func (c Config) resolve() (connParams, error) {
	if c.Name == "" && c.TursoURL == "" {
		return connParams{}, ErrMissingName
	}

	p := connParams{
		Database:      c.Name,
		AuthToken:     c.AuthToken,
		EncryptionKey: c.EncryptionKey,
		Timeout:       c.Timeout,
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}

	level, err := normalizeIsolationLevel(c.IsolationLevel)
	if err != nil {
		return connParams{}, err
	}
	p.IsolationLevel = level

	if strings.HasPrefix(p.Database, "libsql://") {
		rewritten, token, err := rewriteLibsqlURL(p.Database)
		if err != nil {
			return connParams{}, err
		}
		p.Database = rewritten
		if token != "" {
			p.AuthToken = token
		}
	}

	remote := isRemoteURL(p.Database)

	switch {
	case c.TursoURL != "":
		// Injected credentials force embedded-replica mode against the
		// local file, mirroring per-request credential switching.
		p.Mode = ModeReplica
		p.Database = localFileOr(c.LocalFile)
		p.SyncURL = c.TursoURL
		if c.TursoAuthToken != "" {
			p.AuthToken = c.TursoAuthToken
		}
	case c.SyncURL != "":
		p.Mode = ModeReplica
		if remote {
			// A remote Name plus a sync option means: keep data in the
			// local file and treat Name as the primary to sync from.
			p.SyncURL = p.Database
			p.Database = localFileOr(c.LocalFile)
		} else {
			p.SyncURL = c.SyncURL
		}
	case remote:
		p.Mode = ModeRemote
	default:
		p.Mode = ModeLocal
	}

	if p.Mode == ModeLocal && p.EncryptionKey != "" {
		return connParams{}, ErrEncryptionUnsupported
	}
	return p, nil
}

// rewriteLibsqlURL converts a libsql:// URL into the https:// form the
// client libraries connect with, extracting an authToken query parameter
// when present.
func rewriteLibsqlURL(raw string) (rewritten, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("libsqldb: parse database URL: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("libsqldb: database URL %q has no host", raw)
	}
	token = u.Query().Get("authToken")
	return "https://" + u.Host + u.Path, token, nil
}

func localFileOr(path string) string {
	if path != "" {
		return path
	}
	return DefaultLocalFile
}

func normalizeIsolationLevel(level string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "":
		return DefaultIsolationLevel, nil
	case "DEFERRED":
		return "DEFERRED", nil
	case "IMMEDIATE":
		return "IMMEDIATE", nil
	case "EXCLUSIVE":
		return "EXCLUSIVE", nil
	default:
		return "", fmt.Errorf("libsqldb: invalid isolation level %q; use DEFERRED, IMMEDIATE, or EXCLUSIVE", level)
	}
}
