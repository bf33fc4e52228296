package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cdg/internal/certs"
	"github.com/zsiec/cdg/internal/distribution"
	"github.com/zsiec/cdg/internal/library"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		libraryDir string
		addr       string
		apiAddr    string
		certOut    string
		hosts      []string
	)

	cmd := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve decoded frames over HTTPS and HTTP/3",
		Long: "Load every track in the library directory (plus any FILE arguments) " +
			"and serve them through the frame API on a self-signed certificate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("library") {
				libraryDir = cfg.Serve.LibraryDir
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("api-addr") {
				apiAddr = cfg.Serve.APIAddr
			}
			log := ctx.logger()

			opts, err := ctx.parserOptions(0)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr := library.NewManager(log, opts...)
			if libraryDir != "" {
				n, err := mgr.Scan(runCtx, libraryDir, cfg.Render.Workers)
				if err != nil {
					return err
				}
				log.Info("library scanned", "dir", libraryDir, "tracks", n)
			}
			for _, ref := range args {
				if _, err := mgr.Load("", ref); err != nil {
					return err
				}
			}

			log.Info("generating self-signed certificate")
			cert, err := certs.Generate(time.Duration(cfg.Serve.CertValidityHours)*time.Hour, hosts...)
			if err != nil {
				return fmt.Errorf("generate certificate: %w", err)
			}
			log.Info("certificate generated",
				"fingerprint", cert.FingerprintBase64(),
				"expires", cert.NotAfter.Format(time.RFC3339),
			)
			if certOut != "" {
				if err := cert.WritePEM(certOut); err != nil {
					return err
				}
			}

			srv, err := distribution.NewServer(distribution.ServerConfig{
				Addr:   addr,
				Cert:   cert,
				Tracks: mgr,
				Log:    log,
			})
			if err != nil {
				return err
			}
			apiSrv := &http.Server{
				Addr:    apiAddr,
				Handler: srv.APIHandler(),
				TLSConfig: &tls.Config{
					Certificates: []tls.Certificate{cert.TLSCert},
				},
			}

			log.Info("cdg starting",
				"version", version,
				"http3", addr,
				"api", apiAddr,
				"tracks", len(mgr.List()),
				"cert_hash", cert.FingerprintBase64(),
			)

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				log.Info("HTTPS API server listening", "addr", apiAddr)
				if err := apiSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("API server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return apiSrv.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				return srv.Start(gctx)
			})

			err = g.Wait()
			log.Info("cdg stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&libraryDir, "library", "", "Directory of .cdg files and .zip archives (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP/3 listen address (default from config)")
	cmd.Flags().StringVar(&apiAddr, "api-addr", "", "HTTPS listen address (default from config)")
	cmd.Flags().StringVar(&certOut, "cert-out", "", "Write the generated certificate and key as PEM to this path")
	cmd.Flags().StringSliceVar(&hosts, "host", nil, "Extra DNS name or IP for the certificate (repeatable)")
	return cmd
}
