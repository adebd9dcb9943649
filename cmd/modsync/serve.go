package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dshills/modsync/internal/config/notify"
	"github.com/dshills/modsync/internal/metric"
	"github.com/dshills/modsync/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration document, its fingerprint and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc := a.service(metric.NewMetrics(reg))
			defer svc.Close()

			if err := svc.LoadSettings(cmd.Context()); err != nil {
				return err
			}

			if a.settings.Watch {
				if err := svc.Watch(); err != nil {
					return err
				}
				svc.Subscribe(func(c notify.Change) {
					a.log.Info("serving new configuration", "change", c.Type, "sections", c.Sections)
				})
			}

			return server.New(svc, reg, a.log).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
