package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/web"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the review web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireAPIKey(cfg); err != nil {
				return err
			}

			store, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			orch, err := buildOrchestrator(cmd.Context(), cfg, false, false)
			if err != nil {
				return err
			}

			server, err := web.NewServer(orch, store)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", port)
			fmt.Printf("Starting UI on http://localhost%s\n", addr)
			return http.ListenAndServe(addr, server.Routes())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	return cmd
}
