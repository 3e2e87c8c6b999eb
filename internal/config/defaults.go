package config

const (
	defaultConfigPath             = "~/.config/pokedex/config.toml"
	defaultDataDir                = "~/.local/share/pokedex"
	defaultLogDir                 = "~/.local/share/pokedex/logs"
	defaultAPIBind                = "127.0.0.1:7488"
	defaultCatalogPath            = "~/.local/share/pokedex/pokemon_full_list.json"
	defaultCatalogDownloadTimeout = 60
	defaultClassifierBaseURL      = "http://127.0.0.1:5000"
	defaultClassifierTimeout      = 30
	defaultMaxImageMB             = 10
	defaultHistoryPath            = "~/.local/share/pokedex/history.db"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	envClassifierURL = "POKEDEX_CLASSIFIER_URL"
	envCatalogURL    = "POKEDEX_CATALOG_URL"
)

// Default returns a Config populated with repository defaults. The classifier
// base URL and catalog download URL are left empty so environment fallbacks
// can apply during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Catalog: Catalog{
			Path:            defaultCatalogPath,
			DownloadTimeout: defaultCatalogDownloadTimeout,
			SkipMalformed:   true,
		},
		Classifier: Classifier{
			TimeoutSeconds: defaultClassifierTimeout,
			MaxImageMB:     defaultMaxImageMB,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
