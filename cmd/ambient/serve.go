package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/control"
	"github.com/lixenwraith/ambient/logging"
	"github.com/lixenwraith/ambient/service"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP control API",
		Long: `Serve the control API. Audio stays dormant until POST /gesture.

Example:
  ambient serve --addr :8090
  curl -X POST localhost:8090/gesture
  curl -X POST localhost:8090/ambient/ghat`,
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
			controlSvc := control.NewService(audioSvc, control.Config{Addr: addr})

			hub := service.NewHub(logger)
			for _, svc := range []service.Service{audioSvc, controlSvc} {
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

			fmt.Fprintf(cmd.OutOrStdout(), "ambient control API listening on %s\n", controlSvc.Server().Addr())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)
			<-sig
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8090", "Listen address")
	return cmd
}
