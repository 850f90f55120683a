package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/crash"
	"github.com/lixenwraith/ambient/logging"
)

var version = "0.1.0"

// options are the persistent flags shared by every command
type options struct {
	configPath string
	debug      bool
	logDir     string
	backend    string
	seed       uint64
	low        bool
}

func main() {
	defer func() {
		crash.Handle(recover())
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ambient",
		Short: "Procedural ambient soundscapes",
		Long: `ambient synthesises scene soundscapes from noise beds, drones and
randomly timed events, with one-shot interface cues on top.

Audio starts on the first key press, click or POST /gesture.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	f.BoolVar(&opts.debug, "debug", false, "Write debug logs to the log directory")
	f.StringVar(&opts.logDir, "log-dir", logging.DefaultDir, "Log directory")
	f.StringVarP(&opts.backend, "backend", "b", "", "Output backend (auto, speaker, oto, pipe, null)")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 seeds from the runtime)")
	f.BoolVar(&opts.low, "low", false, "Low complexity: half the generators per scene")

	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newScenesCmd(opts))
	return root
}

// loadConfig reads the config file and environment, then applies explicit flags
func loadConfig(cmd *cobra.Command, opts *options) (*audio.Config, error) {
	cfg, err := audio.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("low") {
		cfg.LowComplexity = opts.low
	}
	return cfg, nil
}
