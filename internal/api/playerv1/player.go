// Package playerv1 defines the podbox.player.v1 RPC messages.
package playerv1

// NotificationType is the kind of a pushed notification.
type NotificationType int32

const (
	NotificationType_NOTIFICATION_TYPE_UNSPECIFIED    NotificationType = 0
	NotificationType_NOTIFICATION_TYPE_INITIAL_STATE  NotificationType = 1
	NotificationType_NOTIFICATION_TYPE_CHANGE_STATE   NotificationType = 2
	NotificationType_NOTIFICATION_TYPE_CHANGE_EPISODE NotificationType = 3
	NotificationType_NOTIFICATION_TYPE_SESSION_ENDED  NotificationType = 4
)

var (
	NotificationType_name = map[int32]string{
		0: "NOTIFICATION_TYPE_UNSPECIFIED",
		1: "NOTIFICATION_TYPE_INITIAL_STATE",
		2: "NOTIFICATION_TYPE_CHANGE_STATE",
		3: "NOTIFICATION_TYPE_CHANGE_EPISODE",
		4: "NOTIFICATION_TYPE_SESSION_ENDED",
	}
	NotificationType_value = map[string]int32{
		"NOTIFICATION_TYPE_UNSPECIFIED":    0,
		"NOTIFICATION_TYPE_INITIAL_STATE":  1,
		"NOTIFICATION_TYPE_CHANGE_STATE":   2,
		"NOTIFICATION_TYPE_CHANGE_EPISODE": 3,
		"NOTIFICATION_TYPE_SESSION_ENDED":  4,
	}
)

func (t NotificationType) String() string {
	return enumName(NotificationType_name, int32(t))
}

func (t NotificationType) MarshalJSON() ([]byte, error) {
	return marshalEnum(NotificationType_name, int32(t))
}

func (t *NotificationType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(NotificationType_value, data)
	*t = NotificationType(v)
	return err
}

// SessionPhase mirrors the server session lifecycle.
type SessionPhase int32

const (
	SessionPhase_SESSION_PHASE_UNSPECIFIED SessionPhase = 0
	SessionPhase_SESSION_PHASE_IDLE        SessionPhase = 1
	SessionPhase_SESSION_PHASE_ACTIVE      SessionPhase = 2
	SessionPhase_SESSION_PHASE_TERMINATED  SessionPhase = 3
)

var (
	SessionPhase_name = map[int32]string{
		0: "SESSION_PHASE_UNSPECIFIED",
		1: "SESSION_PHASE_IDLE",
		2: "SESSION_PHASE_ACTIVE",
		3: "SESSION_PHASE_TERMINATED",
	}
	SessionPhase_value = map[string]int32{
		"SESSION_PHASE_UNSPECIFIED": 0,
		"SESSION_PHASE_IDLE":        1,
		"SESSION_PHASE_ACTIVE":      2,
		"SESSION_PHASE_TERMINATED":  3,
	}
)

func (p SessionPhase) String() string {
	return enumName(SessionPhase_name, int32(p))
}

func (p SessionPhase) MarshalJSON() ([]byte, error) {
	return marshalEnum(SessionPhase_name, int32(p))
}

func (p *SessionPhase) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(SessionPhase_value, data)
	*p = SessionPhase(v)
	return err
}

// SurfaceState mirrors the audio surface state.
type SurfaceState int32

const (
	SurfaceState_SURFACE_STATE_UNSPECIFIED SurfaceState = 0
	SurfaceState_SURFACE_STATE_IDLE        SurfaceState = 1
	SurfaceState_SURFACE_STATE_PLAYING     SurfaceState = 2
	SurfaceState_SURFACE_STATE_PAUSED      SurfaceState = 3
)

var (
	SurfaceState_name = map[int32]string{
		0: "SURFACE_STATE_UNSPECIFIED",
		1: "SURFACE_STATE_IDLE",
		2: "SURFACE_STATE_PLAYING",
		3: "SURFACE_STATE_PAUSED",
	}
	SurfaceState_value = map[string]int32{
		"SURFACE_STATE_UNSPECIFIED": 0,
		"SURFACE_STATE_IDLE":        1,
		"SURFACE_STATE_PLAYING":     2,
		"SURFACE_STATE_PAUSED":      3,
	}
)

func (s SurfaceState) String() string {
	return enumName(SurfaceState_name, int32(s))
}

func (s SurfaceState) MarshalJSON() ([]byte, error) {
	return marshalEnum(SurfaceState_name, int32(s))
}

func (s *SurfaceState) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(SurfaceState_value, data)
	*s = SurfaceState(v)
	return err
}

// Episode is a playable media item.
type Episode struct {
	Title           string  `json:"title" validate:"required"`
	Members         string  `json:"members,omitempty"`
	Thumbnail       string  `json:"thumbnail,omitempty" validate:"omitempty,uri"`
	DurationSeconds float64 `json:"durationSeconds" validate:"gte=0,lte=9223372036"`
	Url             string  `json:"url" validate:"required,uri"`
}

// PlayerState is the store snapshot as seen by remote consumers.
type PlayerState struct {
	EpisodeList         []*Episode `json:"episodeList"`
	CurrentEpisodeIndex int32      `json:"currentEpisodeIndex"`
	CurrentEpisode      *Episode   `json:"currentEpisode,omitempty"`
	IsPlaying           bool       `json:"isPlaying"`
	IsLooping           bool       `json:"isLooping"`
	IsShuffling         bool       `json:"isShuffling"`
	HasPrevious         bool       `json:"hasPrevious"`
	HasNext             bool       `json:"hasNext"`
	Generation          uint64     `json:"generation,string"`
}

// PlaybackInfo describes what the audio surface is doing.
type PlaybackInfo struct {
	State            SurfaceState `json:"state"`
	PositionSeconds  float64      `json:"positionSeconds"`
	RemainingSeconds float64      `json:"remainingSeconds"`
}

// SessionInfo describes the server session.
type SessionInfo struct {
	SessionId        string       `json:"sessionId"`
	Title            string       `json:"title"`
	Phase            SessionPhase `json:"phase"`
	StartedAt        string       `json:"startedAt,omitempty"`
	ScheduledEndTime string       `json:"scheduledEndTime,omitempty"`
}

// Notification is pushed to subscribers.
type Notification struct {
	Type        NotificationType `json:"type"`
	SequenceNo  uint64           `json:"sequenceNo,string"`
	Cause       string           `json:"cause,omitempty"`
	State       *PlayerState     `json:"state,omitempty"`
	Playback    *PlaybackInfo    `json:"playback,omitempty"`
	SessionInfo *SessionInfo     `json:"sessionInfo,omitempty"`
}

// StateResponse carries the state after a call.
type StateResponse struct {
	State    *PlayerState  `json:"state"`
	Playback *PlaybackInfo `json:"playback,omitempty"`
}

// PlayRequest plays a single episode.
type PlayRequest struct {
	Episode *Episode `json:"episode" validate:"required"`
}

// PlaylistRequest loads a playlist, either inline or from the catalog.
type PlaylistRequest struct {
	Episodes   []*Episode `json:"episodes,omitempty" validate:"omitempty,dive,required"`
	PlaylistId string     `json:"playlistId,omitempty"`
	Index      int32      `json:"index" validate:"gte=0"`
}

// SubscribeRequest opens a notification stream.
type SubscribeRequest struct {
	DisplayName string `json:"displayName,omitempty"`
	ClientId    string `json:"clientId,omitempty"`
}

// CatalogPlaylist summarizes a catalog playlist.
type CatalogPlaylist struct {
	Id                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	TotalDurationSeconds float64    `json:"totalDurationSeconds"`
	Episodes             []*Episode `json:"episodes"`
}

// ListPlaylistsResponse lists catalog playlists.
type ListPlaylistsResponse struct {
	Playlists []*CatalogPlaylist `json:"playlists"`
}

// ListenerInfo describes a connected subscriber.
type ListenerInfo struct {
	ListenerId  string `json:"listenerId"`
	DisplayName string `json:"displayName"`
	ClientId    string `json:"clientId,omitempty"`
	JoinedAt    string `json:"joinedAt"`
	Delivered   int32  `json:"delivered"`
}

// ListListenersResponse lists connected subscribers.
type ListListenersResponse struct {
	Listeners []*ListenerInfo `json:"listeners"`
}

// StopSessionResponse reports the outcome of a stop request.
type StopSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
