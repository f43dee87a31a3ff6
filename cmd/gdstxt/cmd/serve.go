/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/gdstxt/pkg/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the gdstxt REST API server.

Files are posted to /api/v1/convert/gds2txt or /api/v1/convert/txt2gds and
the converted file is returned. With ?store=true the output is kept in the
result store under --data-dir and an id is returned instead.

Examples:
  gdstxt serve --port=8080
  gdstxt serve --api-key=mysecretkey --data-dir=./data
  gdstxt serve --no-store`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config()
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("bind") {
				cfg.Server.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("api-key") {
				cfg.Server.APIKey, _ = flags.GetString("api-key")
			}
			if flags.Changed("data-dir") {
				cfg.Storage.DataDir, _ = flags.GetString("data-dir")
			}
			noStore, _ := flags.GetBool("no-store")

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := container.Logger()

			var store api.ResultStore
			if !noStore {
				s, err := container.GetStoreFactory().OpenStore(cfg.Storage.DataDir)
				if err != nil {
					return err
				}
				defer s.Close()
				store = s
				logger.Info("result store opened", "data_dir", cfg.Storage.DataDir)
			}

			if cfg.Server.APIKey == "" {
				logger.Warn("API key not set; requests are not authenticated")
			}

			server := container.GetServerFactory().CreateServer(
				container.TagTable(),
				store,
				api.ServerConfig{
					Port:         cfg.Server.Port,
					Bind:         cfg.Server.Bind,
					APIKey:       cfg.Server.APIKey,
					MaxBodyBytes: cfg.Server.MaxBodyBytes,
				},
				container.Metrics(),
				logger,
				container.ConvertOptions()...,
			)
			return server.Serve(cmd.Context())
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (empty disables authentication)")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Directory of the result store")
	serveCmd.Flags().Bool("no-store", false, "Disable the result store")
	return serveCmd
}
