package session

import (
	"time"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
	"github.com/osa030/podbox/internal/app/playback"
	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/listener"
	"github.com/osa030/podbox/internal/domain/playlist"
)

// EpisodeFromMessage converts a wire episode to the domain value.
func EpisodeFromMessage(e *playerv1.Episode) episode.Episode {
	if e == nil {
		return episode.Episode{}
	}
	return episode.Episode{
		Title:     e.Title,
		Members:   e.Members,
		Thumbnail: e.Thumbnail,
		Duration:  episode.FromSeconds(e.DurationSeconds),
		URL:       e.Url,
	}
}

// EpisodesFromMessages converts a list of wire episodes.
func EpisodesFromMessages(list []*playerv1.Episode) []episode.Episode {
	out := make([]episode.Episode, len(list))
	for i, e := range list {
		out[i] = EpisodeFromMessage(e)
	}
	return out
}

// EpisodeToMessage converts a domain episode to the wire message.
func EpisodeToMessage(e episode.Episode) *playerv1.Episode {
	return &playerv1.Episode{
		Title:           e.Title,
		Members:         e.Members,
		Thumbnail:       e.Thumbnail,
		DurationSeconds: e.Duration.Seconds(),
		Url:             e.URL,
	}
}

func episodesToMessages(list []episode.Episode) []*playerv1.Episode {
	out := make([]*playerv1.Episode, len(list))
	for i, e := range list {
		out[i] = EpisodeToMessage(e)
	}
	return out
}

// PlayerStateMessage converts a store snapshot to the wire message.
func PlayerStateMessage(snap player.Snapshot) *playerv1.PlayerState {
	msg := &playerv1.PlayerState{
		EpisodeList:         episodesToMessages(snap.EpisodeList),
		CurrentEpisodeIndex: int32(snap.CurrentEpisodeIndex),
		IsPlaying:           snap.IsPlaying,
		IsLooping:           snap.IsLooping,
		IsShuffling:         snap.IsShuffling,
		HasPrevious:         snap.HasPrevious,
		HasNext:             snap.HasNext,
		Generation:          snap.Generation,
	}
	if e, ok := snap.CurrentEpisode(); ok {
		msg.CurrentEpisode = EpisodeToMessage(e)
	}
	return msg
}

// SurfaceStateMessage converts a surface state to the wire enum.
func SurfaceStateMessage(s playback.State) playerv1.SurfaceState {
	switch s {
	case playback.StateIdle:
		return playerv1.SurfaceState_SURFACE_STATE_IDLE
	case playback.StatePlaying:
		return playerv1.SurfaceState_SURFACE_STATE_PLAYING
	case playback.StatePaused:
		return playerv1.SurfaceState_SURFACE_STATE_PAUSED
	default:
		return playerv1.SurfaceState_SURFACE_STATE_UNSPECIFIED
	}
}

// PlaybackInfoMessage builds the surface part of a response.
func PlaybackInfoMessage(s playback.State, position, remaining time.Duration) *playerv1.PlaybackInfo {
	return &playerv1.PlaybackInfo{
		State:            SurfaceStateMessage(s),
		PositionSeconds:  position.Seconds(),
		RemainingSeconds: remaining.Seconds(),
	}
}

// PlaylistMessage converts a catalog playlist to the wire message.
func PlaylistMessage(p playlist.Playlist) *playerv1.CatalogPlaylist {
	return &playerv1.CatalogPlaylist{
		Id:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		TotalDurationSeconds: p.TotalDuration().Seconds(),
		Episodes:             episodesToMessages(p.Episodes),
	}
}

// ListenerMessage converts a listener session to the wire message.
func ListenerMessage(s *listener.Session) *playerv1.ListenerInfo {
	return &playerv1.ListenerInfo{
		ListenerId:  s.ID,
		DisplayName: s.Label(),
		ClientId:    s.ClientID,
		JoinedAt:    s.JoinedAt.Format(time.RFC3339),
		Delivered:   int32(s.Delivered),
	}
}
