package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbd"
	"github.com/drpcorg/dbstatic/repl"
	"github.com/drpcorg/dbstatic/store"
	"github.com/drpcorg/dbstatic/utils"
)

// app is what every subcommand starts from: the merged config and a base
// with the definition files loaded.
type app struct {
	cfg  *Config
	log  *utils.DefaultLogger
	base *dbstatic.Base
}

func newApp(cmd *cobra.Command, configFile *string) (*app, error) {
	cfg, err := loadConfig(newViper(*configFile), cmd.Flags())
	if err != nil {
		return nil, err
	}
	log := utils.NewLogger(cmd.ErrOrStderr(), utils.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	b := dbstatic.NewBase(dbstatic.Options{
		Logger:     log,
		PvdBuckets: cfg.PvdBuckets,
	})
	if cfg.Path != "" {
		b.SetPath(cfg.Path)
	}
	for _, file := range cfg.DBD {
		if err := dbd.LoadFile(b, file); err != nil {
			return nil, err
		}
		log.Debug("loaded", "file", file)
	}
	return &app{cfg: cfg, log: log, base: b}, nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.Store, store.Options{Logger: a.log})
}

func output(cmd *cobra.Command, args []string) (io.Writer, func() error, error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:   "dbstatic",
		Short: "Process database definition tool",
		Long: `dbstatic loads database definition (.dbd) and instance (.db) files
into memory, lets you inspect and edit the records, writes them back in
definition format and keeps snapshots in a local store.`,
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default dbstatic.yaml in . or $HOME/.dbstatic)")
	flags.StringSlice("dbd", nil, "definition or instance file to load, repeatable")
	flags.String("path", "", "colon separated directories to look files up in")
	flags.String("store", "", "snapshot store directory")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("log-json", false, "log JSON records")
	flags.Int("pvd-buckets", 0, "name directory buckets")

	shell := &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			r := repl.New(dbstatic.NewGuard(a.base), s)
			r.Out = cmd.OutOrStdout()
			if a.cfg.Listen != "" {
				srv := &http.Server{Addr: a.cfg.Listen, Handler: r.Mux()}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.log.Error("http server stopped", "addr", a.cfg.Listen, "err", err)
					}
				}()
				defer srv.Close()
			}
			if err := r.Open(a.cfg.History); err != nil {
				return err
			}
			defer r.Close()
			return r.Run()
		},
	}
	shell.Flags().String("listen", "", "serve the HTTP handlers on this address")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP handlers without a shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			if a.cfg.Listen == "" {
				return errors.New("no listen address")
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			r := repl.New(dbstatic.NewGuard(a.base), s)
			srv := &http.Server{Addr: a.cfg.Listen, Handler: r.Mux()}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()
			a.log.Info("serving", "addr", a.cfg.Listen)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	serve.Flags().String("listen", "", "address to serve on")

	write := &cobra.Command{
		Use:   "write [file]",
		Short: "Write the loaded base in definition format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			w, done, err := output(cmd, args)
			if err != nil {
				return err
			}
			if err := a.base.Write(w); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Load the files and count records per type",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for rt := range a.base.RecordTypes() {
				fmt.Fprintf(out, "%-20s %d\n", rt.Name, rt.NRecords())
			}
			fmt.Fprintf(out, "%-20s %d\n", "total", a.base.NRecords())
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Snapshot the loaded records into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			meta, err := s.Save(commandContext(cmd), a.base)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d records as %s\n", meta.Records, meta.ID)
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore [file]",
		Short: "Load the stored snapshot over the definitions and write the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, &configFile)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.Load(commandContext(cmd), a.base)
			if err != nil {
				return err
			}
			a.log.Info("restored", "records", n)
			w, done, err := output(cmd, args)
			if err != nil {
				return err
			}
			if err := a.base.Write(w); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}

	root.AddCommand(shell, serve, write, check, save, restore)
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
