package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	Long: `Start an HTTP server that manages the input folder, runs the batch phases
as background jobs and streams their events over a websocket.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		application.Server.Addr = fmt.Sprintf(":%d", servePort)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", application.Server.Addr)
	return application.Serve(cmd.Context())
}
