package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/screenbeam/screenbeam/internal/server"
	"github.com/screenbeam/screenbeam/internal/ui"
)

var flagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling relay server",
	Long: `Run the WebSocket signaling relay that pairs two peers per room and
forwards their negotiation messages.

Examples:
  screenbeam serve
  screenbeam serve --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(flagPort)
	},
}

func runServer(port int) error {
	hub := server.NewHub()
	go hub.Run()
	defer hub.Stop()

	addr := fmt.Sprintf(":%d", port)
	ui.PrintInfof("Signaling relay listening on %s", addr)
	slog.Info("server starting", "addr", addr)

	if err := http.ListenAndServe(addr, server.NewMux(hub)); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&flagPort, "port", 8080, "Listen port")
}
