// Package playerv1connect provides connect handlers and clients for the
// podbox.player.v1 services.
package playerv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
)

const (
	// ListenerServiceName is the fully-qualified name of the ListenerService service.
	ListenerServiceName = "podbox.player.v1.ListenerService"
	// ControlServiceName is the fully-qualified name of the ControlService service.
	ControlServiceName = "podbox.player.v1.ControlService"
)

// Procedure paths.
const (
	ListenerServiceGetStateProcedure      = "/podbox.player.v1.ListenerService/GetState"
	ListenerServiceListPlaylistsProcedure = "/podbox.player.v1.ListenerService/ListPlaylists"
	ListenerServiceSubscribeProcedure     = "/podbox.player.v1.ListenerService/Subscribe"

	ControlServicePlayProcedure             = "/podbox.player.v1.ControlService/Play"
	ControlServicePlaylistProcedure         = "/podbox.player.v1.ControlService/Playlist"
	ControlServiceTogglePlayProcedure       = "/podbox.player.v1.ControlService/TogglePlay"
	ControlServiceToggleLoopProcedure       = "/podbox.player.v1.ControlService/ToggleLoop"
	ControlServiceToggleShuffleProcedure    = "/podbox.player.v1.ControlService/ToggleShuffle"
	ControlServiceSetPlayingStateProcedure  = "/podbox.player.v1.ControlService/SetPlayingState"
	ControlServiceClearPlayerStateProcedure = "/podbox.player.v1.ControlService/ClearPlayerState"
	ControlServicePlayNextProcedure         = "/podbox.player.v1.ControlService/PlayNext"
	ControlServicePlayPreviousProcedure     = "/podbox.player.v1.ControlService/PlayPrevious"
	ControlServiceListListenersProcedure    = "/podbox.player.v1.ControlService/ListListeners"
	ControlServiceStopSessionProcedure      = "/podbox.player.v1.ControlService/StopSession"
)

// ListenerServiceHandler is implemented by the read/subscribe side of the server.
type ListenerServiceHandler interface {
	GetState(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	ListPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.ListPlaylistsResponse], error)
	Subscribe(context.Context, *connect.Request[playerv1.SubscribeRequest], *connect.ServerStream[playerv1.Notification]) error
}

// ControlServiceHandler is implemented by the mutating side of the server.
type ControlServiceHandler interface {
	Play(context.Context, *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StateResponse], error)
	Playlist(context.Context, *connect.Request[playerv1.PlaylistRequest]) (*connect.Response[playerv1.StateResponse], error)
	TogglePlay(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	ToggleLoop(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	ToggleShuffle(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	SetPlayingState(context.Context, *connect.Request[wrapperspb.BoolValue]) (*connect.Response[playerv1.StateResponse], error)
	ClearPlayerState(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	PlayNext(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	PlayPrevious(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	ListListeners(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.ListListenersResponse], error)
	StopSession(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StopSessionResponse], error)
}

// NewListenerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewListenerServiceHandler(svc ListenerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	routes := map[string]http.Handler{
		ListenerServiceGetStateProcedure:      connect.NewUnaryHandler(ListenerServiceGetStateProcedure, svc.GetState, opts...),
		ListenerServiceListPlaylistsProcedure: connect.NewUnaryHandler(ListenerServiceListPlaylistsProcedure, svc.ListPlaylists, opts...),
		ListenerServiceSubscribeProcedure:     connect.NewServerStreamHandler(ListenerServiceSubscribeProcedure, svc.Subscribe, opts...),
	}
	return "/" + ListenerServiceName + "/", route(routes)
}

// NewControlServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewControlServiceHandler(svc ControlServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	routes := map[string]http.Handler{
		ControlServicePlayProcedure:             connect.NewUnaryHandler(ControlServicePlayProcedure, svc.Play, opts...),
		ControlServicePlaylistProcedure:         connect.NewUnaryHandler(ControlServicePlaylistProcedure, svc.Playlist, opts...),
		ControlServiceTogglePlayProcedure:       connect.NewUnaryHandler(ControlServiceTogglePlayProcedure, svc.TogglePlay, opts...),
		ControlServiceToggleLoopProcedure:       connect.NewUnaryHandler(ControlServiceToggleLoopProcedure, svc.ToggleLoop, opts...),
		ControlServiceToggleShuffleProcedure:    connect.NewUnaryHandler(ControlServiceToggleShuffleProcedure, svc.ToggleShuffle, opts...),
		ControlServiceSetPlayingStateProcedure:  connect.NewUnaryHandler(ControlServiceSetPlayingStateProcedure, svc.SetPlayingState, opts...),
		ControlServiceClearPlayerStateProcedure: connect.NewUnaryHandler(ControlServiceClearPlayerStateProcedure, svc.ClearPlayerState, opts...),
		ControlServicePlayNextProcedure:         connect.NewUnaryHandler(ControlServicePlayNextProcedure, svc.PlayNext, opts...),
		ControlServicePlayPreviousProcedure:     connect.NewUnaryHandler(ControlServicePlayPreviousProcedure, svc.PlayPrevious, opts...),
		ControlServiceListListenersProcedure:    connect.NewUnaryHandler(ControlServiceListListenersProcedure, svc.ListListeners, opts...),
		ControlServiceStopSessionProcedure:      connect.NewUnaryHandler(ControlServiceStopSessionProcedure, svc.StopSession, opts...),
	}
	return "/" + ControlServiceName + "/", route(routes)
}

func route(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// ListenerServiceClient is a client for the ListenerService service.
type ListenerServiceClient interface {
	GetState(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error)
	ListPlaylists(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.ListPlaylistsResponse], error)
	Subscribe(context.Context, *connect.Request[playerv1.SubscribeRequest]) (*connect.ServerStreamForClient[playerv1.Notification], error)
}

// NewListenerServiceClient constructs a client for the ListenerService service.
func NewListenerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ListenerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return &listenerServiceClient{
		getState:      connect.NewClient[emptypb.Empty, playerv1.StateResponse](httpClient, baseURL+ListenerServiceGetStateProcedure, opts...),
		listPlaylists: connect.NewClient[emptypb.Empty, playerv1.ListPlaylistsResponse](httpClient, baseURL+ListenerServiceListPlaylistsProcedure, opts...),
		subscribe:     connect.NewClient[playerv1.SubscribeRequest, playerv1.Notification](httpClient, baseURL+ListenerServiceSubscribeProcedure, opts...),
	}
}

type listenerServiceClient struct {
	getState      *connect.Client[emptypb.Empty, playerv1.StateResponse]
	listPlaylists *connect.Client[emptypb.Empty, playerv1.ListPlaylistsResponse]
	subscribe     *connect.Client[playerv1.SubscribeRequest, playerv1.Notification]
}

func (c *listenerServiceClient) GetState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *listenerServiceClient) ListPlaylists(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.ListPlaylistsResponse], error) {
	return c.listPlaylists.CallUnary(ctx, req)
}

func (c *listenerServiceClient) Subscribe(ctx context.Context, req *connect.Request[playerv1.SubscribeRequest]) (*connect.ServerStreamForClient[playerv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

// ControlServiceClient is a client for the ControlService service.
type ControlServiceClient interface {
	ControlServiceHandler
}

// NewControlServiceClient constructs a client for the ControlService service.
func NewControlServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ControlServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	empty := func(procedure string) *connect.Client[emptypb.Empty, playerv1.StateResponse] {
		return connect.NewClient[emptypb.Empty, playerv1.StateResponse](httpClient, baseURL+procedure, opts...)
	}
	return &controlServiceClient{
		play:             connect.NewClient[playerv1.PlayRequest, playerv1.StateResponse](httpClient, baseURL+ControlServicePlayProcedure, opts...),
		playlist:         connect.NewClient[playerv1.PlaylistRequest, playerv1.StateResponse](httpClient, baseURL+ControlServicePlaylistProcedure, opts...),
		togglePlay:       empty(ControlServiceTogglePlayProcedure),
		toggleLoop:       empty(ControlServiceToggleLoopProcedure),
		toggleShuffle:    empty(ControlServiceToggleShuffleProcedure),
		setPlayingState:  connect.NewClient[wrapperspb.BoolValue, playerv1.StateResponse](httpClient, baseURL+ControlServiceSetPlayingStateProcedure, opts...),
		clearPlayerState: empty(ControlServiceClearPlayerStateProcedure),
		playNext:         empty(ControlServicePlayNextProcedure),
		playPrevious:     empty(ControlServicePlayPreviousProcedure),
		listListeners:    connect.NewClient[emptypb.Empty, playerv1.ListListenersResponse](httpClient, baseURL+ControlServiceListListenersProcedure, opts...),
		stopSession:      connect.NewClient[emptypb.Empty, playerv1.StopSessionResponse](httpClient, baseURL+ControlServiceStopSessionProcedure, opts...),
	}
}

type controlServiceClient struct {
	play             *connect.Client[playerv1.PlayRequest, playerv1.StateResponse]
	playlist         *connect.Client[playerv1.PlaylistRequest, playerv1.StateResponse]
	togglePlay       *connect.Client[emptypb.Empty, playerv1.StateResponse]
	toggleLoop       *connect.Client[emptypb.Empty, playerv1.StateResponse]
	toggleShuffle    *connect.Client[emptypb.Empty, playerv1.StateResponse]
	setPlayingState  *connect.Client[wrapperspb.BoolValue, playerv1.StateResponse]
	clearPlayerState *connect.Client[emptypb.Empty, playerv1.StateResponse]
	playNext         *connect.Client[emptypb.Empty, playerv1.StateResponse]
	playPrevious     *connect.Client[emptypb.Empty, playerv1.StateResponse]
	listListeners    *connect.Client[emptypb.Empty, playerv1.ListListenersResponse]
	stopSession      *connect.Client[emptypb.Empty, playerv1.StopSessionResponse]
}

func (c *controlServiceClient) Play(ctx context.Context, req *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *controlServiceClient) Playlist(ctx context.Context, req *connect.Request[playerv1.PlaylistRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.playlist.CallUnary(ctx, req)
}

func (c *controlServiceClient) TogglePlay(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

func (c *controlServiceClient) ToggleLoop(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.toggleLoop.CallUnary(ctx, req)
}

func (c *controlServiceClient) ToggleShuffle(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.toggleShuffle.CallUnary(ctx, req)
}

func (c *controlServiceClient) SetPlayingState(ctx context.Context, req *connect.Request[wrapperspb.BoolValue]) (*connect.Response[playerv1.StateResponse], error) {
	return c.setPlayingState.CallUnary(ctx, req)
}

func (c *controlServiceClient) ClearPlayerState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.clearPlayerState.CallUnary(ctx, req)
}

func (c *controlServiceClient) PlayNext(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.playNext.CallUnary(ctx, req)
}

func (c *controlServiceClient) PlayPrevious(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StateResponse], error) {
	return c.playPrevious.CallUnary(ctx, req)
}

func (c *controlServiceClient) ListListeners(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.ListListenersResponse], error) {
	return c.listListeners.CallUnary(ctx, req)
}

func (c *controlServiceClient) StopSession(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[playerv1.StopSessionResponse], error) {
	return c.stopSession.CallUnary(ctx, req)
}
