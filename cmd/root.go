package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/screenbeam/screenbeam/internal/ui"
	"github.com/screenbeam/screenbeam/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "screenbeam",
	Short:   "Share your screen with a peer over WebRTC",
	Long:    `ScreenBeam shares your screen and microphone with one peer over a direct WebRTC connection. Both sides join a room on a lightweight signaling relay; media and chat flow peer to peer, with the relay only carrying the negotiation messages.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
