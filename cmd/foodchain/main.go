package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"foodchain/cmd/foodchain/farmer"
	"foodchain/cmd/foodchain/mandi"
	"foodchain/cmd/foodchain/retailer"
	"foodchain/internal/api"
	"foodchain/internal/config"
	"foodchain/internal/logging"
	"foodchain/internal/voice"
)

var (
	// Global flags
	verbose    bool
	configPath string
	backendURL string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "foodchain",
	Short: "FoodChain - farm-to-market decision support",
	Long: `FoodChain is a terminal decision-support client for the farming
marketplace: voice or typed market queries with price forecasts and route
previews for farmers, supply-chain monitoring with what-if simulation and
alert escalation for mandi operators, and price checks for retailers.

Pick a role to start its dashboard:
  foodchain farmer
  foodchain mandi
  foodchain retailer`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if backendURL != "" {
			cfg.Backend.URL = backendURL
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(cfg.Logging.StateDir, level); err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var farmerCmd = &cobra.Command{
	Use:   "farmer",
	Short: "Voice-driven market assistant for farmers",
	Long: `Opens the farmer dashboard: ask in Hindi or English what to sell and
where, get vendor quotes ranked by price, a 7-day price forecast, and the
road route to the selected mandi. Works offline with demo data when the
backend is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("starting farmer dashboard", zap.String("backend", cfg.Backend.URL))
		var synth voice.Synthesizer
		if cfg.Speech.Enabled {
			if s := voice.NewCommandSynthesizer(); s != nil {
				synth = s
			}
		}
		return runProgram(farmer.New(cfg, newClient(), synth))
	},
}

var mandiCmd = &cobra.Command{
	Use:   "mandi",
	Short: "Supply-chain operations dashboard for mandi operators",
	Long: `Opens the mandi dashboard: inventory and flow overview, supply-chain
stress with active disruption signals, per-crop price forecasts, fleet
tracking, recommended interventions, a what-if scenario simulator, and
tiered alert escalation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("starting mandi dashboard", zap.String("backend", cfg.Backend.URL))
		return runProgram(mandi.New(cfg, newClient()))
	},
}

var retailerCmd = &cobra.Command{
	Use:   "retailer",
	Short: "Mandi price checks for retailers",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("starting retailer dashboard", zap.String("backend", cfg.Backend.URL))
		return runProgram(retailer.New(cfg, newClient()))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the current configuration to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func newClient() *api.Client {
	timeout, _ := cfg.BackendTimeout()
	return api.NewClient(cfg.Backend.URL, timeout)
}

func runProgram(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend URL (or set FOODCHAIN_BACKEND_URL)")

	rootCmd.AddCommand(farmerCmd)
	rootCmd.AddCommand(mandiCmd)
	rootCmd.AddCommand(retailerCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
