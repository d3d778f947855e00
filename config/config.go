package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"search-settings-service/services"
)

const envPrefix = "SETTINGS"

// Config is read from SETTINGS_* environment variables.
type Config struct {
	Addr string `envconfig:"ADDR" default:":1234"`

	Backend        string `envconfig:"BACKEND" default:"elasticsearch"`
	SearchURL      string `envconfig:"SEARCH_URL" default:"https://localhost:9200"`
	SearchUsername string `envconfig:"SEARCH_USERNAME"`
	SearchPassword string `envconfig:"SEARCH_PASSWORD"`
	SearchInsecure bool   `envconfig:"SEARCH_INSECURE" default:"false"`

	// StoreDir holds one settings file per index.
	StoreDir   string `envconfig:"STORE_DIR" default:"settings"`
	ModelsFile string `envconfig:"MODELS_FILE"`
	RulesFile  string `envconfig:"RULES_FILE"`

	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads the environment. It does not validate, so that command-line
// overrides can be applied first; call Validate on the final Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to read config from env")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case services.BackendElasticsearch, services.BackendOpenSearch:
	default:
		return errors.Wrapf(services.ErrUnknownBackend, "SETTINGS_BACKEND=%q", c.Backend)
	}
	if c.StoreDir == "" {
		return errors.New("SETTINGS_STORE_DIR must not be empty")
	}
	return nil
}

func (c Config) BackendConfig() services.BackendConfig {
	return services.BackendConfig{
		Kind:     c.Backend,
		URL:      c.SearchURL,
		Username: c.SearchUsername,
		Password: c.SearchPassword,
		Insecure: c.SearchInsecure,
	}
}
