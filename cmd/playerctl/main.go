// Package main provides the player control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apiconnect "github.com/osa030/podbox/internal/api/connect"
	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/api/playerv1/playerv1connect"
)

var (
	app    = kingpin.New("podbox-playerctl", "podbox player control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set PODBOX_CONTROL_TOKEN env)").Envar("PODBOX_CONTROL_TOKEN").String()

	// state command
	stateCmd = app.Command("state", "Show the current player state")

	// playlists command
	playlistsCmd = app.Command("playlists", "List catalog playlists")

	// play command
	playCmd       = app.Command("play", "Play a single episode")
	playTitle     = playCmd.Arg("title", "Episode title").Required().String()
	playURL       = playCmd.Arg("url", "Episode audio URL").Required().String()
	playDuration  = playCmd.Flag("duration", "Episode duration in seconds").Default("0").Float64()
	playMembers   = playCmd.Flag("members", "Episode members").String()
	playThumbnail = playCmd.Flag("thumbnail", "Episode thumbnail URL").String()

	// playlist command
	playlistCmd   = app.Command("playlist", "Load a catalog playlist or a list of episode URLs")
	playlistID    = playlistCmd.Flag("id", "Catalog playlist ID").String()
	playlistIndex = playlistCmd.Flag("index", "Index to start at").Default("0").Int32()
	playlistURLs  = playlistCmd.Arg("urls", "Episode audio URLs (title=url or url)").Strings()

	// toggle commands
	togglePlayCmd    = app.Command("toggle-play", "Toggle playing")
	toggleLoopCmd    = app.Command("toggle-loop", "Toggle looping")
	toggleShuffleCmd = app.Command("toggle-shuffle", "Toggle shuffling")

	// set-playing command
	setPlayingCmd   = app.Command("set-playing", "Set the playing flag")
	setPlayingValue = setPlayingCmd.Arg("value", "true or false").Required().Bool()

	// navigation commands
	clearCmd = app.Command("clear", "Clear the playlist")
	nextCmd  = app.Command("next", "Play the next episode")
	prevCmd  = app.Command("prev", "Play the previous episode").Alias("previous")

	// listeners command
	listenersCmd = app.Command("listeners", "List connected listeners")

	// stop command
	stopCmd = app.Command("stop", "Stop the session")

	// subscribe command
	subscribeCmd      = app.Command("subscribe", "Subscribe to notifications")
	subscribeName     = subscribeCmd.Flag("name", "Display name").String()
	subscribeClientID = subscribeCmd.Flag("client-id", "Client ID").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	listener := playerv1connect.NewListenerServiceClient(http.DefaultClient, *server)
	control := playerv1connect.NewControlServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(apiconnect.NewControlTokenClientInterceptor(*token)),
	)

	ctx := context.Background()

	// Execute command
	switch command {
	case stateCmd.FullCommand():
		resp, err := listener.GetState(ctx, connect.NewRequest(&emptypb.Empty{}))
		printState(resp, err)
	case playlistsCmd.FullCommand():
		listPlaylists(ctx, listener)
	case playCmd.FullCommand():
		resp, err := control.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{
			Episode: &playerv1.Episode{
				Title:           *playTitle,
				Members:         *playMembers,
				Thumbnail:       *playThumbnail,
				DurationSeconds: *playDuration,
				Url:             *playURL,
			},
		}))
		printState(resp, err)
	case playlistCmd.FullCommand():
		resp, err := control.Playlist(ctx, connect.NewRequest(&playerv1.PlaylistRequest{
			Episodes:   parseEpisodes(*playlistURLs),
			PlaylistId: *playlistID,
			Index:      *playlistIndex,
		}))
		printState(resp, err)
	case togglePlayCmd.FullCommand():
		printState(control.TogglePlay(ctx, connect.NewRequest(&emptypb.Empty{})))
	case toggleLoopCmd.FullCommand():
		printState(control.ToggleLoop(ctx, connect.NewRequest(&emptypb.Empty{})))
	case toggleShuffleCmd.FullCommand():
		printState(control.ToggleShuffle(ctx, connect.NewRequest(&emptypb.Empty{})))
	case setPlayingCmd.FullCommand():
		printState(control.SetPlayingState(ctx, connect.NewRequest(wrapperspb.Bool(*setPlayingValue))))
	case clearCmd.FullCommand():
		printState(control.ClearPlayerState(ctx, connect.NewRequest(&emptypb.Empty{})))
	case nextCmd.FullCommand():
		printState(control.PlayNext(ctx, connect.NewRequest(&emptypb.Empty{})))
	case prevCmd.FullCommand():
		printState(control.PlayPrevious(ctx, connect.NewRequest(&emptypb.Empty{})))
	case listenersCmd.FullCommand():
		listListeners(ctx, control)
	case stopCmd.FullCommand():
		stopSession(ctx, control)
	case subscribeCmd.FullCommand():
		subscribe(ctx, listener, *subscribeName, *subscribeClientID)
	}
}

// parseEpisodes builds episodes from "title=url" or bare "url" arguments.
func parseEpisodes(args []string) []*playerv1.Episode {
	episodes := make([]*playerv1.Episode, 0, len(args))
	for i, arg := range args {
		title, url, ok := strings.Cut(arg, "=")
		if !ok || strings.Contains(title, "://") {
			title, url = fmt.Sprintf("Episode %d", i+1), arg
		}
		episodes = append(episodes, &playerv1.Episode{Title: title, Url: url})
	}
	return episodes
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printState(resp *connect.Response[playerv1.StateResponse], err error) {
	exitOnError(err)

	fmt.Println("\n=== PLAYER STATE ===")
	printPlayerState(resp.Msg.State)
	printPlayback(resp.Msg.Playback)
	fmt.Println()
}

func printPlayerState(s *playerv1.PlayerState) {
	if s == nil {
		return
	}
	fmt.Printf("Generation: %d\n", s.Generation)
	fmt.Printf("Playing: %v  Looping: %v  Shuffling: %v\n", s.IsPlaying, s.IsLooping, s.IsShuffling)
	fmt.Printf("Has Previous: %v  Has Next: %v\n", s.HasPrevious, s.HasNext)
	fmt.Printf("Episodes: %d\n", len(s.EpisodeList))
	for i, e := range s.EpisodeList {
		marker := " "
		if int32(i) == s.CurrentEpisodeIndex {
			marker = ">"
		}
		fmt.Printf("  %s %2d. %s (%.0fs) %s\n", marker, i, e.Title, e.DurationSeconds, e.Url)
	}
	if s.CurrentEpisode == nil {
		fmt.Println("\nNo episode loaded")
	}
}

func printPlayback(p *playerv1.PlaybackInfo) {
	if p == nil {
		return
	}
	fmt.Printf("\nPlayback: %s\n", formatSurfaceState(p.State))
	fmt.Printf("  Position: %.1f seconds\n", p.PositionSeconds)
	fmt.Printf("  Remaining: %.1f seconds\n", p.RemainingSeconds)
}

func formatSurfaceState(state playerv1.SurfaceState) string {
	switch state {
	case playerv1.SurfaceState_SURFACE_STATE_IDLE:
		return "⏹  Idle"
	case playerv1.SurfaceState_SURFACE_STATE_PLAYING:
		return "▶️  Playing"
	case playerv1.SurfaceState_SURFACE_STATE_PAUSED:
		return "⏸  Paused"
	default:
		return "❓ Unknown"
	}
}

func formatSessionPhase(phase playerv1.SessionPhase) string {
	switch phase {
	case playerv1.SessionPhase_SESSION_PHASE_IDLE:
		return "Idle"
	case playerv1.SessionPhase_SESSION_PHASE_ACTIVE:
		return "Active"
	case playerv1.SessionPhase_SESSION_PHASE_TERMINATED:
		return "Terminated"
	default:
		return "Unknown"
	}
}

func listPlaylists(ctx context.Context, client playerv1connect.ListenerServiceClient) {
	resp, err := client.ListPlaylists(ctx, connect.NewRequest(&emptypb.Empty{}))
	exitOnError(err)

	playlists := resp.Msg.Playlists
	fmt.Printf("\n=== CATALOG PLAYLISTS (%d) ===\n", len(playlists))
	for _, p := range playlists {
		fmt.Printf("\n%s - %s\n", p.Id, p.Name)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		fmt.Printf("  Episodes: %d (%.0f seconds)\n", len(p.Episodes), p.TotalDurationSeconds)
		for i, e := range p.Episodes {
			fmt.Printf("    %2d. %s\n", i, e.Title)
		}
	}
	fmt.Println()
}

func listListeners(ctx context.Context, client playerv1connect.ControlServiceClient) {
	resp, err := client.ListListeners(ctx, connect.NewRequest(&emptypb.Empty{}))
	exitOnError(err)

	listeners := resp.Msg.Listeners
	if len(listeners) == 0 {
		fmt.Println("No listeners connected")
		return
	}

	fmt.Printf("\n=== LISTENERS (%d) ===\n", len(listeners))
	for _, l := range listeners {
		fmt.Printf("\nListener ID: %s\n", l.ListenerId)
		fmt.Printf("  Display Name: %s\n", l.DisplayName)
		if l.ClientId != "" {
			fmt.Printf("  Client ID: %s\n", l.ClientId)
		}
		fmt.Printf("  Joined At: %s\n", l.JoinedAt)
		fmt.Printf("  Delivered: %d\n", l.Delivered)
	}
	fmt.Println()
}

func stopSession(ctx context.Context, client playerv1connect.ControlServiceClient) {
	resp, err := client.StopSession(ctx, connect.NewRequest(&emptypb.Empty{}))
	exitOnError(err)

	if resp.Msg.Success {
		fmt.Println("Session stopped")
	} else {
		fmt.Printf("Failed: %s\n", resp.Msg.Message)
	}
}

func subscribe(ctx context.Context, client playerv1connect.ListenerServiceClient, name, clientID string) {
	stream, err := client.Subscribe(ctx, connect.NewRequest(&playerv1.SubscribeRequest{
		DisplayName: name,
		ClientId:    clientID,
	}))
	exitOnError(err)

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		os.Exit(0)
	}()

	// Receive notifications
	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if err := stream.Err(); err != nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printNotification(n *playerv1.Notification) {
	// Print sequence number
	fmt.Printf("\n[Sequence: %d] ", n.SequenceNo)

	// Print event type header
	switch n.Type {
	case playerv1.NotificationType_NOTIFICATION_TYPE_INITIAL_STATE:
		fmt.Println("=== INITIAL STATE ===")
	case playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_STATE:
		fmt.Println("=== STATE CHANGED ===")
	case playerv1.NotificationType_NOTIFICATION_TYPE_CHANGE_EPISODE:
		fmt.Println("=== EPISODE CHANGED ===")
	case playerv1.NotificationType_NOTIFICATION_TYPE_SESSION_ENDED:
		fmt.Println("=== SESSION ENDED ===")
	default:
		fmt.Printf("=== UNKNOWN EVENT (%v) ===\n", n.Type)
	}
	if n.Cause != "" {
		fmt.Printf("Cause: %s\n", n.Cause)
	}

	// Print SessionInfo if available
	if n.SessionInfo != nil {
		fmt.Println("\nSession Info:")
		fmt.Printf("  Session ID: %s\n", n.SessionInfo.SessionId)
		fmt.Printf("  Title: %s\n", n.SessionInfo.Title)
		fmt.Printf("  Phase: %s\n", formatSessionPhase(n.SessionInfo.Phase))
		fmt.Printf("  Started At: %s\n", n.SessionInfo.StartedAt)
		if n.SessionInfo.ScheduledEndTime != "" {
			fmt.Printf("  Scheduled End Time: %s\n", n.SessionInfo.ScheduledEndTime)
		}
	}

	printPlayerState(n.State)
	printPlayback(n.Playback)
	fmt.Println()
}
