package cmd

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/lsst-sims/catalogs/config"
	"github.com/lsst-sims/catalogs/logs"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogs",
	Short: "Query groups of adapters sharing a table and write their catalogs.",
	Long: `catalogs merges the columns of adapters querying the same database table
into a single query, fetches the rows chunk by chunk and splits them back
into one view per adapter.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logDir != "" {
			if err := logs.InitializeFileLogger(logDir); err != nil {
				return errors.Wrap(err, "couldn't initialize logger")
			}
		}
		if profileMode != "" {
			mode, err := profilingMode(profileMode)
			if err != nil {
				return err
			}
			profiler = profile.Start(mode, profile.ProfilePath(profileDir), profile.Quiet, profile.NoShutdownHook)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
		return logs.CloseLogger()
	},
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

var (
	configPath        string
	defaultConfigPath string
	logDir            string
	profileMode       string
	profileDir        string

	profiler interface{ Stop() }
)

func init() {
	var err error
	defaultConfigPath, err = config.DefaultPath()
	if err != nil {
		log.Printf("couldn't get default config path: %s", err)
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Configuration file declaring databases, files and adapters.")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory to write logs.txt to, stderr if empty.")
	rootCmd.PersistentFlags().StringVar(&profileMode, "profile", "", "Profile the command: cpu, mem, block, mutex or trace.")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile-dir", os.TempDir(), "Directory to write profiles to.")
}

func profilingMode(name string) (func(*profile.Profile), error) {
	switch name {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	}
	return nil, errors.Errorf("unknown profile mode: %s", name)
}

// withEnvironment runs fn with an environment closed afterwards.
func withEnvironment(fn func(env *environment) error) (outErr error) {
	env, err := newEnvironment(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil && outErr == nil {
			outErr = err
		}
	}()
	return fn(env)
}
