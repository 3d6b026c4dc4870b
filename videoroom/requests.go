package videoroom

import (
	"context"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Actions accepted by Allow.
const (
	AllowActionEnable  = "enable"
	AllowActionDisable = "disable"
	AllowActionAdd     = "add"
	AllowActionRemove  = "remove"
)

// Optional request fields are pointers: an absent field tells the gateway
// "use the default", which is not the same as an explicit false/zero.

type CreateOptions struct {
	Room           ID     `json:"room,omitzero"`
	Description    string `json:"description,omitempty"`
	Permanent      *bool  `json:"permanent,omitempty"`
	IsPrivate      *bool  `json:"is_private,omitempty"`
	Secret         string `json:"secret,omitempty"`
	Pin            string `json:"pin,omitempty"`
	AdminKey       string `json:"admin_key,omitempty"`
	MaxPublishers  *int   `json:"publishers,omitempty"`
	Bitrate        *int64 `json:"bitrate,omitempty"`
	FirFreq        *int   `json:"fir_freq,omitempty"`
	AudioCodec     string `json:"audiocodec,omitempty"`
	VideoCodec     string `json:"videocodec,omitempty"`
	H264Profile    string `json:"h264_profile,omitempty"`
	Record         *bool  `json:"record,omitempty"`
	RecDir         string `json:"rec_dir,omitempty"`
	VideoOrientExt *bool  `json:"videoorient_ext,omitempty"`
}

type DestroyOptions struct {
	Room      ID     `json:"room"`
	Permanent *bool  `json:"permanent,omitempty"`
	Secret    string `json:"secret,omitempty"`
}

type AllowOptions struct {
	Room    ID       `json:"room"`
	Action  string   `json:"action"`
	Allowed []string `json:"allowed,omitempty"`
	Secret  string   `json:"secret,omitempty"`
}

type KickOptions struct {
	Room   ID     `json:"room"`
	Feed   ID     `json:"id"`
	Secret string `json:"secret,omitempty"`
}

type JoinPublisherOptions struct {
	Room    ID     `json:"room"`
	Feed    ID     `json:"id,omitzero"`
	Display string `json:"display,omitempty"`
	Token   string `json:"token,omitempty"`
	Pin     string `json:"pin,omitempty"`
}

type JoinConfigureOptions struct {
	Room     ID     `json:"room"`
	Feed     ID     `json:"id,omitzero"`
	Display  string `json:"display,omitempty"`
	Token    string `json:"token,omitempty"`
	Pin      string `json:"pin,omitempty"`
	Audio    *bool  `json:"audio,omitempty"`
	Video    *bool  `json:"video,omitempty"`
	Data     *bool  `json:"data,omitempty"`
	Bitrate  *int64 `json:"bitrate,omitempty"`
	Record   *bool  `json:"record,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type ConfigureOptions struct {
	Audio    *bool  `json:"audio,omitempty"`
	Video    *bool  `json:"video,omitempty"`
	Data     *bool  `json:"data,omitempty"`
	Bitrate  *int64 `json:"bitrate,omitempty"`
	Record   *bool  `json:"record,omitempty"`
	Filename string `json:"filename,omitempty"`
	Display  string `json:"display,omitempty"`
	Restart  *bool  `json:"restart,omitempty"`
	Update   *bool  `json:"update,omitempty"`
}

type PublishOptions struct {
	Audio      *bool  `json:"audio,omitempty"`
	Video      *bool  `json:"video,omitempty"`
	Data       *bool  `json:"data,omitempty"`
	AudioCodec string `json:"audiocodec,omitempty"`
	VideoCodec string `json:"videocodec,omitempty"`
	Bitrate    *int64 `json:"bitrate,omitempty"`
	Record     *bool  `json:"record,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Display    string `json:"display,omitempty"`
}

type JoinSubscriberOptions struct {
	Room  ID     `json:"room"`
	Feed  ID     `json:"feed"`
	Audio *bool  `json:"audio,omitempty"`
	Video *bool  `json:"video,omitempty"`
	Data  *bool  `json:"data,omitempty"`
	Token string `json:"token,omitempty"`
	Pin   string `json:"pin,omitempty"`
}

type ForwardOptions struct {
	Room          ID      `json:"room"`
	Feed          ID      `json:"publisher_id"`
	Host          string  `json:"host"`
	AudioPort     *int    `json:"audio_port,omitempty"`
	AudioRTCPPort *int    `json:"audio_rtcp_port,omitempty"`
	AudioSSRC     *uint32 `json:"audio_ssrc,omitempty"`
	VideoPort     *int    `json:"video_port,omitempty"`
	VideoRTCPPort *int    `json:"video_rtcp_port,omitempty"`
	VideoSSRC     *uint32 `json:"video_ssrc,omitempty"`
	DataPort      *int    `json:"data_port,omitempty"`
	Secret        string  `json:"secret,omitempty"`
	AdminKey      string  `json:"admin_key,omitempty"`
}

type StopForwardOptions struct {
	Room     ID     `json:"room"`
	Feed     ID     `json:"publisher_id"`
	StreamID int64  `json:"stream_id"`
	Secret   string `json:"secret,omitempty"`
	AdminKey string `json:"admin_key,omitempty"`
}

// roundTrip sends one plugin request, suspends until the correlated
// transaction closes, and checks the reply carries the expected event name.
func (h *Handle) roundTrip(ctx context.Context, request string, body any, jsep *webrtc.SessionDescription, want EventName) (*Event, error) {
	reply, err := h.tr.Request(ctx, body, jsep)
	if err != nil {
		return nil, err
	}
	evt, ok := reply.(*Event)
	if !ok {
		return nil, &UnexpectedReplyError{Request: request}
	}
	if evt.Name != want {
		return nil, &UnexpectedReplyError{Request: request, Got: evt.Name}
	}
	return evt, nil
}

// cleanupOnNegotiationFailure hangs up the endpoint after a failed request
// that attached a negotiation offer, so the gateway does not keep a
// half-established media session around. The hangup is best effort and the
// original error is always the one surfaced.
func (h *Handle) cleanupOnNegotiationFailure(ctx context.Context, err error) error {
	if !needsCleanup(err) {
		return err
	}
	if herr := h.tr.Hangup(ctx); herr != nil {
		log.Warn().Err(herr).Str("module", "videoroom.handle").Msg("cleanup hangup failed")
	}
	return err
}

// checkConfigured enforces the literal "ok" acknowledgment carried by
// configure/publish-class replies.
func checkConfigured(request string, evt *Event) (*ConfiguredData, error) {
	data := evt.Data.(ConfiguredData)
	if data.Configured != "ok" {
		return nil, &UnexpectedReplyError{Request: request, Got: evt.Name}
	}
	data.Jsep = evt.Jsep
	return &data, nil
}

// Create makes a new room on the gateway.
func (h *Handle) Create(ctx context.Context, opts CreateOptions) (*CreatedData, error) {
	body := struct {
		Request string `json:"request"`
		CreateOptions
	}{"create", opts}
	evt, err := h.roundTrip(ctx, "create", body, nil, EventCreated)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(CreatedData)
	return &data, nil
}

// Destroy removes a room from the gateway.
func (h *Handle) Destroy(ctx context.Context, opts DestroyOptions) (*DestroyedData, error) {
	body := struct {
		Request string `json:"request"`
		DestroyOptions
	}{"destroy", opts}
	evt, err := h.roundTrip(ctx, "destroy", body, nil, EventDestroyed)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(DestroyedData)
	return &data, nil
}

// Exists asks whether a room is known to the gateway.
func (h *Handle) Exists(ctx context.Context, room ID) (bool, error) {
	body := struct {
		Request string `json:"request"`
		Room    ID     `json:"room"`
	}{"exists", room}
	evt, err := h.roundTrip(ctx, "exists", body, nil, EventExists)
	if err != nil {
		return false, err
	}
	return evt.Data.(ExistsData).Exists, nil
}

// List returns the rooms the gateway is willing to advertise.
func (h *Handle) List(ctx context.Context) ([]RoomInfo, error) {
	body := struct {
		Request string `json:"request"`
	}{"list"}
	evt, err := h.roundTrip(ctx, "list", body, nil, EventRoomList)
	if err != nil {
		return nil, err
	}
	return evt.Data.(RoomListData).Rooms, nil
}

// Allow edits or toggles a room's token-based access list and returns the
// resulting list.
func (h *Handle) Allow(ctx context.Context, opts AllowOptions) ([]string, error) {
	body := struct {
		Request string `json:"request"`
		AllowOptions
	}{"allowed", opts}
	evt, err := h.roundTrip(ctx, "allowed", body, nil, EventAllowed)
	if err != nil {
		return nil, err
	}
	return evt.Data.(AllowedData).Allowed, nil
}

// Kick forcibly removes a participant from a room.
func (h *Handle) Kick(ctx context.Context, opts KickOptions) error {
	body := struct {
		Request string `json:"request"`
		KickOptions
	}{"kick", opts}
	_, err := h.roundTrip(ctx, "kick", body, nil, EventSuccess)
	return err
}

// ListParticipants snapshots a room's membership. A zero room means the
// room this endpoint joined.
func (h *Handle) ListParticipants(ctx context.Context, room ID) ([]Participant, error) {
	if room.IsZero() {
		room = h.Room()
	}
	body := struct {
		Request string `json:"request"`
		Room    ID     `json:"room"`
	}{"listparticipants", room}
	evt, err := h.roundTrip(ctx, "listparticipants", body, nil, EventParticipantsList)
	if err != nil {
		return nil, err
	}
	return evt.Data.(ParticipantsData).Participants, nil
}

// JoinPublisher joins a room in the publisher role, without negotiating
// media yet.
func (h *Handle) JoinPublisher(ctx context.Context, opts JoinPublisherOptions) (*PublisherJoinedData, error) {
	body := struct {
		Request string `json:"request"`
		PType   string `json:"ptype"`
		JoinPublisherOptions
	}{"join", "publisher", opts}
	evt, err := h.roundTrip(ctx, "join", body, nil, EventPublisherJoined)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(PublisherJoinedData)
	if data.Display == "" {
		// The gateway does not echo the requested display name back.
		data.Display = opts.Display
	}
	data.Jsep = evt.Jsep
	return &data, nil
}

// JoinConfigurePublisher joins a room in the publisher role and starts
// publishing in the same round trip. The offer is mandatory.
func (h *Handle) JoinConfigurePublisher(ctx context.Context, opts JoinConfigureOptions, jsep *webrtc.SessionDescription) (*PublisherJoinedData, error) {
	if jsep == nil || jsep.Type != webrtc.SDPTypeOffer {
		return nil, ErrOfferRequired
	}
	body := struct {
		Request string `json:"request"`
		PType   string `json:"ptype"`
		JoinConfigureOptions
	}{"joinandconfigure", "publisher", opts}
	evt, err := h.roundTrip(ctx, "joinandconfigure", body, jsep, EventPublisherJoined)
	if err != nil {
		return nil, h.cleanupOnNegotiationFailure(ctx, err)
	}
	data := evt.Data.(PublisherJoinedData)
	if data.Display == "" {
		data.Display = opts.Display
	}
	data.Jsep = evt.Jsep
	return &data, nil
}

// ConfigurePublisher tunes an active publisher. When jsep carries a
// renegotiation offer the negotiation cleanup guard applies.
func (h *Handle) ConfigurePublisher(ctx context.Context, opts ConfigureOptions, jsep *webrtc.SessionDescription) (*ConfiguredData, error) {
	body := struct {
		Request string `json:"request"`
		ConfigureOptions
	}{"configure", opts}
	evt, err := h.roundTrip(ctx, "configure", body, jsep, EventConfigured)
	if err != nil {
		if jsep != nil {
			return nil, h.cleanupOnNegotiationFailure(ctx, err)
		}
		return nil, err
	}
	return checkConfigured("configure", evt)
}

// Publish starts publishing this endpoint's feed. The offer is mandatory
// and checked before any network interaction.
func (h *Handle) Publish(ctx context.Context, opts PublishOptions, jsep *webrtc.SessionDescription) (*ConfiguredData, error) {
	if jsep == nil || jsep.Type != webrtc.SDPTypeOffer {
		return nil, ErrOfferRequired
	}
	body := struct {
		Request string `json:"request"`
		PublishOptions
	}{"publish", opts}
	evt, err := h.roundTrip(ctx, "publish", body, jsep, EventConfigured)
	if err != nil {
		return nil, h.cleanupOnNegotiationFailure(ctx, err)
	}
	return checkConfigured("publish", evt)
}

// Unpublish stops publishing without leaving the room.
func (h *Handle) Unpublish(ctx context.Context) (*UnpublishedData, error) {
	body := struct {
		Request string `json:"request"`
	}{"unpublish"}
	evt, err := h.roundTrip(ctx, "unpublish", body, nil, EventUnpublished)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(UnpublishedData)
	return &data, nil
}

// JoinSubscriber attaches this endpoint to a published feed. The reply
// carries the gateway's offer in the returned Jsep.
func (h *Handle) JoinSubscriber(ctx context.Context, opts JoinSubscriberOptions) (*SubscriberJoinedData, error) {
	body := struct {
		Request string `json:"request"`
		PType   string `json:"ptype"`
		JoinSubscriberOptions
	}{"join", "subscriber", opts}
	evt, err := h.roundTrip(ctx, "join", body, nil, EventSubscriberJoined)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(SubscriberJoinedData)
	data.Jsep = evt.Jsep
	return &data, nil
}

// Start completes a subscriber's negotiation with the answer to the
// gateway's offer.
func (h *Handle) Start(ctx context.Context, jsep *webrtc.SessionDescription) error {
	if jsep == nil || jsep.Type != webrtc.SDPTypeAnswer {
		return ErrAnswerRequired
	}
	body := struct {
		Request string `json:"request"`
	}{"start"}
	_, err := h.roundTrip(ctx, "start", body, jsep, EventStarted)
	return err
}

// Pause suspends delivery of the subscribed feed.
func (h *Handle) Pause(ctx context.Context) error {
	body := struct {
		Request string `json:"request"`
	}{"pause"}
	_, err := h.roundTrip(ctx, "pause", body, nil, EventPaused)
	return err
}

// Leave exits the room in either role.
func (h *Handle) Leave(ctx context.Context) (*LeavingData, error) {
	body := struct {
		Request string `json:"request"`
	}{"leave"}
	evt, err := h.roundTrip(ctx, "leave", body, nil, EventLeaving)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(LeavingData)
	return &data, nil
}

// StartForward asks the gateway to re-forward a published feed to an
// external RTP destination.
func (h *Handle) StartForward(ctx context.Context, opts ForwardOptions) (*ForwardStartedData, error) {
	body := struct {
		Request string `json:"request"`
		ForwardOptions
	}{"rtp_forward", opts}
	evt, err := h.roundTrip(ctx, "rtp_forward", body, nil, EventForwardStarted)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(ForwardStartedData)
	return &data, nil
}

// StopForward terminates one forwarding stream.
func (h *Handle) StopForward(ctx context.Context, opts StopForwardOptions) (*ForwardStoppedData, error) {
	body := struct {
		Request string `json:"request"`
		StopForwardOptions
	}{"stop_rtp_forward", opts}
	evt, err := h.roundTrip(ctx, "stop_rtp_forward", body, nil, EventForwardStopped)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(ForwardStoppedData)
	return &data, nil
}

// ListForward snapshots the active forwarders of a room. A zero room means
// the room this endpoint joined.
func (h *Handle) ListForward(ctx context.Context, room ID, secret string) (*ForwardListData, error) {
	if room.IsZero() {
		room = h.Room()
	}
	body := struct {
		Request string `json:"request"`
		Room    ID     `json:"room"`
		Secret  string `json:"secret,omitempty"`
	}{"listforwarders", room, secret}
	evt, err := h.roundTrip(ctx, "listforwarders", body, nil, EventForwardList)
	if err != nil {
		return nil, err
	}
	data := evt.Data.(ForwardListData)
	return &data, nil
}

// Hangup tears down this endpoint's media session at the gateway without
// detaching the handle.
func (h *Handle) Hangup(ctx context.Context) error {
	return h.tr.Hangup(ctx)
}
