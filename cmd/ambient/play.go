package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/console"
	"github.com/lixenwraith/ambient/logging"
	"github.com/lixenwraith/ambient/service"
)

func newPlayCmd(opts *options) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play scenes from a terminal console",
		Long: `Open the terminal console. Keys 1-6 choose scenes, 0 stops,
h/enter/j/o fire cues, +/- change master volume, m mutes, q quits.

Example:
  ambient play --scene ghat --backend pipe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger, logFile, err := logging.Setup(opts.logDir, opts.debug)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}

			audioSvc := audio.NewService(cfg)
			consoleSvc := console.NewService(audioSvc)

			hub := service.NewHub(logger)
			for _, svc := range []service.Service{audioSvc, consoleSvc} {
				if err := hub.Register(svc); err != nil {
					return err
				}
			}
			if err := hub.InitAll(logger); err != nil {
				return err
			}
			if err := hub.StartAll(); err != nil {
				return err
			}
			defer hub.StopAll()

			if initial != "" {
				audioSvc.Engine().StartAmbient(initial)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)

			select {
			case <-consoleSvc.Done():
			case <-sig:
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&initial, "scene", "s", "", "Scene to start once audio is unlocked")
	return cmd
}
