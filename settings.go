package libsqldb

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// settingsFile is the top-level TOML document read by LoadConfig. All
// connection options live under [database].
type settingsFile struct {
	Database databaseSection `toml:"database"`
}

// databaseSection maps [database].
type databaseSection struct {
	Name           string `toml:"name"`
	AuthToken      string `toml:"auth_token"`
	SyncURL        string `toml:"sync_url"`
	EncryptionKey  string `toml:"encryption_key"`
	Timeout        string `toml:"timeout"`
	IsolationLevel string `toml:"isolation_level"`
	LocalFile      string `toml:"local_file"`
}

// LoadConfig reads a TOML settings file and applies environment overrides
// on top of it.
func LoadConfig(path string) (Config, error) {
	var sf settingsFile
	if _, err := toml.DecodeFile(path, &sf); err != nil {
		return Config{}, fmt.Errorf("libsqldb: load config %q: %w", path, err)
	}

	cfg := Config{
		Name:           sf.Database.Name,
		AuthToken:      sf.Database.AuthToken,
		SyncURL:        sf.Database.SyncURL,
		EncryptionKey:  sf.Database.EncryptionKey,
		IsolationLevel: sf.Database.IsolationLevel,
		LocalFile:      sf.Database.LocalFile,
	}
	if sf.Database.Timeout != "" {
		d, err := parseTimeout(sf.Database.Timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = d
	}
	return ApplyEnv(cfg), nil
}

// ApplyEnv layers runtime-injected credentials from the environment onto a
// configuration. A .env file in the working directory is honored when
// present. TURSO_DATABASE_URL and TURSO_AUTH_TOKEN force embedded-replica
// mode against the configured local file, which is how per-deployment
// credential switching works without editing settings.
func ApplyEnv(cfg Config) Config {
	// Missing .env just means the variables come from the real environment.
	_ = godotenv.Load()

	if v := os.Getenv("TURSO_DATABASE_URL"); v != "" {
		cfg.TursoURL = v
	}
	if v := os.Getenv("TURSO_AUTH_TOKEN"); v != "" {
		cfg.TursoAuthToken = v
	}
	return cfg
}
