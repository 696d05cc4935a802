package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/api/playerv1/playerv1connect"
	"github.com/osa030/podbox/internal/app/catalog"
	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/app/session"
)

var errPlaylistSource = errors.New("exactly one of episodes or playlist_id is required")

// ControlService implements the ControlService RPC.
type ControlService struct {
	session  *session.Manager
	validate *validator.Validate
}

// NewControlService creates a new ControlService.
func NewControlService(session *session.Manager) *ControlService {
	return &ControlService{
		session:  session,
		validate: validator.New(),
	}
}

// Ensure ControlService implements the interface.
var _ playerv1connect.ControlServiceHandler = (*ControlService)(nil)

// Play replaces the playlist with a single episode.
func (s *ControlService) Play(
	ctx context.Context,
	req *connect.Request[playerv1.PlayRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.validateEpisode(req.Msg.Episode); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	return s.mutate(func(store *player.Store) {
		store.Play(session.EpisodeFromMessage(req.Msg.Episode))
	})
}

// Playlist loads an inline or catalog playlist at an index.
func (s *ControlService) Playlist(
	ctx context.Context,
	req *connect.Request[playerv1.PlaylistRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	msg := req.Msg
	if (len(msg.Episodes) > 0) == (msg.PlaylistId != "") {
		return nil, connect.NewError(connect.CodeInvalidArgument, errPlaylistSource)
	}
	if err := s.validate.Struct(msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	for i, e := range msg.Episodes {
		if err := s.validateEpisode(e); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.Wrapf(err, "episode %d", i))
		}
	}

	var err error
	if msg.PlaylistId != "" {
		err = s.session.PlayCatalogPlaylist(msg.PlaylistId, int(msg.Index))
	} else {
		err = s.session.PlayEpisodes(session.EpisodesFromMessages(msg.Episodes), int(msg.Index))
	}
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(s.session.StateResponse()), nil
}

// TogglePlay flips the playing flag.
func (s *ControlService) TogglePlay(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).TogglePlay)
}

// ToggleLoop flips the looping flag.
func (s *ControlService) ToggleLoop(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).ToggleLoop)
}

// ToggleShuffle flips the shuffling flag.
func (s *ControlService) ToggleShuffle(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).ToggleShuffle)
}

// SetPlayingState sets the playing flag.
func (s *ControlService) SetPlayingState(
	ctx context.Context,
	req *connect.Request[wrapperspb.BoolValue],
) (*connect.Response[playerv1.StateResponse], error) {
	playing := req.Msg.GetValue()
	return s.mutate(func(store *player.Store) {
		store.SetPlayingState(playing)
	})
}

// ClearPlayerState empties the playlist.
func (s *ControlService) ClearPlayerState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).ClearPlayerState)
}

// PlayNext advances to the next episode.
func (s *ControlService) PlayNext(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).PlayNext)
}

// PlayPrevious goes back one episode.
func (s *ControlService) PlayPrevious(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return s.mutate((*player.Store).PlayPrevious)
}

// ListListeners lists all listeners.
func (s *ControlService) ListListeners(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.ListListenersResponse], error) {
	listeners := s.session.ListListeners()
	infos := make([]*playerv1.ListenerInfo, len(listeners))
	for i, l := range listeners {
		infos[i] = session.ListenerMessage(l)
	}

	return connect.NewResponse(&playerv1.ListListenersResponse{
		Listeners: infos,
	}), nil
}

// StopSession stops the session.
func (s *ControlService) StopSession(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StopSessionResponse], error) {
	err := s.session.Stop(ctx)
	if err != nil {
		return connect.NewResponse(&playerv1.StopSessionResponse{
			Success: false,
			Message: err.Error(),
		}), nil
	}

	return connect.NewResponse(&playerv1.StopSessionResponse{
		Success: true,
		Message: "Session stopped",
	}), nil
}

// mutate applies fn to the store and returns the resulting state.
func (s *ControlService) mutate(fn func(*player.Store)) (*connect.Response[playerv1.StateResponse], error) {
	store, err := s.session.Player()
	if err != nil {
		return nil, toConnectError(err)
	}
	fn(store)
	return connect.NewResponse(s.session.StateResponse()), nil
}

func (s *ControlService) validateEpisode(e *playerv1.Episode) error {
	if e == nil {
		return errors.New("episode is required")
	}
	return s.validate.Struct(e)
}

// toConnectError maps domain errors to Connect error codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrPlaylistNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrInvalidIndex):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrSessionNotRunning):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		zlog.Error().Msgf("control call failed: %v", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
