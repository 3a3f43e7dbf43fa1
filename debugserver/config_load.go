package debugserver

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// configFile is the on-disk TOML shape for a Config, matching
// internal/tqw's pattern of unmarshaling into a plain intermediate
// struct before converting to the real type (here, the conversion is
// just field renaming plus the []byte/string distinction on the token
// secret).
type configFile struct {
	BindAddress       string `toml:"bind_address"`
	TokenSecret       string `toml:"token_secret"`
	AdminSecret       string `toml:"admin_secret"`
	DB                string `toml:"db"`
	DataDir           string `toml:"data_dir"`
	UnauthDelayMillis int    `toml:"unauth_delay_ms"`
}

// LoadConfig reads a TOML-formatted Config from the file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cf configFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Config{
		BindAddress:       cf.BindAddress,
		TokenSecret:       []byte(cf.TokenSecret),
		AdminSecret:       cf.AdminSecret,
		UnauthDelayMillis: cf.UnauthDelayMillis,
	}

	if cf.DB != "" {
		dbType, err := ParseDBType(cf.DB)
		if err != nil {
			return Config{}, fmt.Errorf("db: %w", err)
		}
		cfg.DB = Database{Type: dbType, DataDir: cf.DataDir}
	}

	return cfg, nil
}
