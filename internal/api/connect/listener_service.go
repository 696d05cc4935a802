package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/api/playerv1/playerv1connect"
	"github.com/osa030/podbox/internal/app/session"
)

// ListenerService implements the ListenerService RPC.
type ListenerService struct {
	session *session.Manager
}

// NewListenerService creates a new ListenerService.
func NewListenerService(session *session.Manager) *ListenerService {
	return &ListenerService{
		session: session,
	}
}

// Ensure ListenerService implements the interface.
var _ playerv1connect.ListenerServiceHandler = (*ListenerService)(nil)

// GetState returns the current player state.
func (s *ListenerService) GetState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.StateResponse], error) {
	return connect.NewResponse(s.session.StateResponse()), nil
}

// ListPlaylists lists the catalog playlists.
func (s *ListenerService) ListPlaylists(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[playerv1.ListPlaylistsResponse], error) {
	playlists := s.session.Playlists()
	resp := &playerv1.ListPlaylistsResponse{
		Playlists: make([]*playerv1.CatalogPlaylist, len(playlists)),
	}
	for i, p := range playlists {
		resp.Playlists[i] = session.PlaylistMessage(p)
	}
	return connect.NewResponse(resp), nil
}

// Subscribe streams INITIAL_STATE followed by every broadcast until the
// client goes away or the session ends. Sequence numbers on one stream
// strictly increase; a stale broadcast is skipped, never reordered.
func (s *ListenerService) Subscribe(
	ctx context.Context,
	req *connect.Request[playerv1.SubscribeRequest],
	stream *connect.ServerStream[playerv1.Notification],
) error {
	listenerID, err := s.session.Join(req.Msg.DisplayName, req.Msg.ClientId, stream)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotRunning) {
			return connect.NewError(connect.CodeFailedPrecondition, err)
		}
		zlog.Debug().Msgf("subscribe failed: display_name=%s error=%v", req.Msg.DisplayName, err)
		return connect.NewError(connect.CodeUnavailable, err)
	}
	defer s.session.Leave(listenerID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	return nil
}
