package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/screenbeam/screenbeam/internal/config"
	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/media/pionengine"
	"github.com/screenbeam/screenbeam/internal/rtc"
	"github.com/screenbeam/screenbeam/internal/signaling"
	"github.com/screenbeam/screenbeam/internal/ui"
	"github.com/screenbeam/screenbeam/internal/version"
	"github.com/screenbeam/screenbeam/internal/wire"
)

var (
	flagDomain       string
	flagSTUN         string
	flagTURN         string
	flagTURNUser     string
	flagTURNPass     string
	flagRelay        bool
	flagCaptureToken string
)

var shareCmd = &cobra.Command{
	Use:     "share <room-id>",
	Aliases: []string{"sh"},
	Short:   "Join a room and share your screen",
	Long: `Join a room on the signaling server and share your screen with the peer
that joins the same room.

Examples:
  screenbeam share my-room
  screenbeam share --domain custom.example.com my-room
  screenbeam share --relay my-room`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shareScreen(args[0])
	},
}

func shareScreen(roomID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := pionengine.New(pionengine.Config{
		STUNServers:  cfg.GetSTUNServers(),
		TURNServers:  cfg.GetTURNServers(),
		TURNUsername: cfg.TURNUser,
		TURNPassword: cfg.TURNPass,
		ForceRelay:   cfg.ForceRelay,
	})
	if err != nil {
		return fmt.Errorf("create media engine: %w", err)
	}

	client := signaling.NewClient(cfg.WebSocketURL)

	var screen *ui.SessionUI
	var controller *rtc.Controller
	events := &rtc.Events{
		Status: func(status string) {
			screen.SetStatus(statusLine(status))
		},
		Connection: func(connected bool) {
			screen.SetConnected(connected)
		},
		PeerJoined: func() {
			screen.SetStatus("Peer joined, negotiating...")
		},
		ChatMessage: func(text string) {
			screen.AddChat("peer: " + text)
		},
		CaptureStatus: func(status string) {
			screen.SetCapture(captureLine(status))
		},
		DataChannelState: func(state media.DataChannelState) {
			if state != media.DataChannelOpen {
				return
			}
			// Introduce ourselves once the channel opens. Async because event
			// handlers must not call back into the controller directly.
			go func() {
				info := wire.DeviceInfo{DeviceName: "screenbeam-cli", DeviceVersion: version.Version}
				if err := controller.SendPayload(wire.TypeDeviceInfo, info); err != nil {
					slog.Debug("send device info", "error", err)
				}
			}()
		},
		RemoteTrack: func(kind media.TrackKind, id string) {
			if kind == media.TrackKindAudio {
				screen.SetCapture("peer microphone live")
			}
		},
		Error: func(err error) {
			screen.ReportError(err.Error())
		},
	}

	controller = rtc.NewController(engine, client, events)
	defer controller.Teardown()

	screen = ui.NewSessionUI(roomID, ui.SessionHooks{
		StartCapture: func() error {
			return controller.StartCapture(cfg.CaptureToken, true, cfg.CaptureWidth, cfg.CaptureHeight, cfg.CaptureFPS)
		},
		StopCapture: controller.StopCapture,
		ToggleAudio: controller.ToggleAudio,
		ToggleVideo: controller.ToggleVideo,
		SendChat: controller.SendChat,
	})

	rtc.NewProtocol(client, controller, roomID).Bind()

	stopSpinner := ui.RunConnectionSpinner("Connecting to server...")
	err = client.Connect()
	stopSpinner()
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	ui.RenderRoomInfo(roomID, cfg.WebSocketURL)

	if err := screen.Run(); err != nil {
		return fmt.Errorf("session screen: %w", err)
	}

	controller.Teardown()
	ui.RenderSessionSummary(ui.SessionSummary{
		RoomID:    roomID,
		Status:    "Ended",
		Duration:  screen.Elapsed(),
		ChatLines: screen.ChatLines(),
	})
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		Domain:       flagDomain,
		STUNServer:   flagSTUN,
		TURNServer:   flagTURN,
		TURNUser:     flagTURNUser,
		TURNPass:     flagTURNPass,
		ForceRelay:   flagRelay,
		CaptureToken: flagCaptureToken,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}

func statusLine(status string) string {
	switch status {
	case rtc.StatusConnecting:
		return "Waiting for a peer..."
	case rtc.StatusConnected:
		return "Connected to peer"
	case rtc.StatusDisconnected:
		return "Peer disconnected"
	}
	return status
}

func captureLine(status string) string {
	switch status {
	case rtc.CaptureStarted:
		return "screen share started"
	case rtc.CaptureStopped:
		return "screen share stopped"
	case rtc.CaptureFailed:
		return "screen share failed"
	}
	return status
}

func init() {
	rootCmd.AddCommand(shareCmd)

	shareCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Custom domain")
	shareCmd.Flags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	shareCmd.Flags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	shareCmd.Flags().StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username")
	shareCmd.Flags().StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password")
	shareCmd.Flags().BoolVarP(&flagRelay, "relay", "r", false, "Force relay mode")
	shareCmd.Flags().StringVar(&flagCaptureToken, "capture-token", "", "Capture permission token")
}
