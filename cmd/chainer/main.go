package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/chainer/pkg/chainer/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "chainer",
	Short: "Forward-chaining knowledge base with truth maintenance",
	Long: `chainer loads facts and rules, derives everything that follows from them,
and keeps every derived item justified so retractions cascade.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// load builds components from the global flags plus knowledge files
func load(files []string) (*config.Components, error) {
	loader := config.Loader{
		ConfigPath:     configPath,
		KnowledgePaths: files,
		LogLevel:       logLevel,
	}

	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	facts, rules := comp.KB.Len()
	comp.Logger.Info("Knowledge base ready",
		zap.Int("facts", facts),
		zap.Int("rules", rules),
		zap.Int("files", len(files)+len(comp.Config.Knowledge.Files)),
	)
	return comp, nil
}
