package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"search-settings-service/config"
	"search-settings-service/logging"
	"search-settings-service/services"
)

var (
	cfg    config.Config
	logger *zap.Logger
	svc    *services.SettingsService
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		storeDir   string
		modelsFile string
		rulesFile  string
		backend    string
		searchURL  string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "search-settings",
		Short:         "Infer and manage search index settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("store-dir") {
				loaded.StoreDir = storeDir
			}
			if flags.Changed("models") {
				loaded.ModelsFile = modelsFile
			}
			if flags.Changed("rules") {
				loaded.RulesFile = rulesFile
			}
			if flags.Changed("backend") {
				loaded.Backend = backend
			}
			if flags.Changed("search-url") {
				loaded.SearchURL = searchURL
			}
			if flags.Changed("log-level") {
				loaded.LogLevel = logLevel
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			logger, err = logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			svc, err = newService(cfg, logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&storeDir, "store-dir", "", "directory of the settings files (default $SETTINGS_STORE_DIR or ./settings)")
	pf.StringVar(&modelsFile, "models", "", "YAML file of sample models")
	pf.StringVar(&rulesFile, "rules", "", "YAML file of extra detection patterns")
	pf.StringVar(&backend, "backend", "", "search backend: elasticsearch or opensearch")
	pf.StringVar(&searchURL, "search-url", "", "search backend URL")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd(), detectCmd(), optimizeCmd(), applyCmd(), statusCmd())
	return root
}

// newService wires the settings service from the configuration.
func newService(cfg config.Config, logger *zap.Logger) (*services.SettingsService, error) {
	rules, err := services.LoadRuleSet(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	backend, err := services.NewBackend(cfg.BackendConfig(), logger)
	if err != nil {
		return nil, err
	}

	source := services.ChainModelSource{}
	if cfg.ModelsFile != "" {
		fileSource, err := services.NewFileModelSource(cfg.ModelsFile)
		if err != nil {
			return nil, err
		}
		source = append(source, fileSource)
	}
	source = append(source, services.NewIndexModelSource(backend))

	factory, err := services.NewSettingsFactory(rules, source, logger)
	if err != nil {
		return nil, err
	}
	store, err := services.NewSettingsStore(cfg.StoreDir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(factory, store, backend, logger), nil
}
