package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/modsync/internal/config"
	"github.com/dshills/modsync/internal/config/loader"
)

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the configuration document, downloading or updating it from the template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.service(nil)
			defer svc.Close()

			if err := svc.LoadSettings(cmd.Context()); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), svc.Current())
			return nil
		},
	}
}

func newFingerprintCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromFile(a.settings.ConfigPath, nil, a.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, config.Serialize(cfg))
				return nil
			}
			fmt.Fprintln(out, config.Fingerprint(cfg))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the fingerprinted serialization instead of its digest")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var from, expect string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Apply a server's configuration document on top of the local one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from == "" {
				return errors.New("--from is required")
			}

			svc := a.service(nil)
			defer svc.Close()

			if err := svc.LoadSettings(cmd.Context()); err != nil {
				return err
			}
			cfg, err := svc.SyncFrom(cmd.Context(), a.fetcher(from))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Remote {
				fmt.Fprintf(out, "applied remote configuration from %s\n", from)
			} else {
				fmt.Fprintf(out, "server does not sync its configuration, keeping local settings\n")
			}
			printSummary(out, cfg)

			if expect != "" {
				return svc.Handshake(expect)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "URL or path of the server document")
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the resulting fingerprint matches")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Merge new template keys into the configuration document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			template := a.fetcher(a.settings.TemplateURL)
			if template == nil {
				return fmt.Errorf("--template-url is required: %w", config.ErrNoSource)
			}

			cfg, err := config.LoadFromFile(a.settings.ConfigPath, nil, a.log)
			if err != nil {
				return err
			}
			updated, err := config.AutoUpdate(cmd.Context(), loader.DefaultFS(), a.settings.ConfigPath, cfg, template, a.log)
			if err != nil {
				return err
			}

			if updated {
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", a.settings.ConfigPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", a.settings.ConfigPath)
			}
			return nil
		},
	}
}

func newDumpCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromFile(a.settings.ConfigPath, nil, a.log)
			if err != nil {
				return err
			}
			data, err := render(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "ini", "output format ("+strings.Join(formats, ", ")+")")
	return cmd
}

func newTemplateCmd(_ *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the default template document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := config.Template()
			if err != nil {
				return err
			}
			data, err := store.Bytes()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return loader.WriteFileAtomic(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func printSummary(w io.Writer, cfg *config.Configuration) {
	enabled := config.EnabledSections(cfg)
	if len(enabled) == 0 {
		enabled = []string{"none"}
	}
	fmt.Fprintf(w, "fingerprint: %s\n", config.Fingerprint(cfg))
	fmt.Fprintf(w, "enabled:     %s\n", strings.Join(enabled, ", "))
}
