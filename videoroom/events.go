package videoroom

import (
	"github.com/pion/webrtc/v4"
)

// EventName is the normalized vocabulary every inbound plugin message is
// reduced to. At most one name is assigned per message.
type EventName string

const (
	EventSuccess          EventName = "success"
	EventExists           EventName = "exists"
	EventRoomList         EventName = "rooms_list"
	EventAllowed          EventName = "allowed"
	EventPublisherJoined  EventName = "publisher_joined"
	EventSubscriberJoined EventName = "subscriber_joined"
	EventSlowLink         EventName = "slow_link"
	EventParticipantsList EventName = "participants_list"
	EventCreated          EventName = "created"
	EventDestroyed        EventName = "destroyed"
	EventForwardStarted   EventName = "rtp_fwd_started"
	EventForwardStopped   EventName = "rtp_fwd_stopped"
	EventForwardList      EventName = "rtp_fwd_list"
	EventPeerJoining      EventName = "peer_joining"
	EventPublisherList    EventName = "publisher_list"
	EventConfigured       EventName = "configured"
	EventDisplayChanged   EventName = "display_changed"
	EventStarted          EventName = "started"
	EventPaused           EventName = "paused"
	EventUnpublished      EventName = "unpublished"
	EventLeaving          EventName = "leaving"
	EventKicked           EventName = "kicked"
	EventError            EventName = "error"
)

// Event is one normalized gateway notification or reply. Data holds the
// payload struct matching Name (e.g. ExistsData for EventExists); Jsep is
// set when the triggering message carried a negotiation payload.
type Event struct {
	Name EventName
	Data any
	Jsep *webrtc.SessionDescription
}

// Publisher is one active publisher as reported by the gateway.
type Publisher struct {
	Feed    ID     `json:"feed"`
	Display string `json:"display,omitempty"`
}

// Participant is one room member from a membership snapshot.
type Participant struct {
	Feed      ID     `json:"feed"`
	Display   string `json:"display,omitempty"`
	Publisher bool   `json:"publisher"`
}

// RoomInfo describes one room in a room listing.
type RoomInfo struct {
	Room            ID     `json:"room"`
	Description     string `json:"description,omitempty"`
	PinRequired     bool   `json:"pin_required,omitempty"`
	MaxPublishers   int    `json:"max_publishers,omitempty"`
	Bitrate         int64  `json:"bitrate,omitempty"`
	FirFreq         int    `json:"fir_freq,omitempty"`
	Recording       bool   `json:"record,omitempty"`
	NumParticipants int    `json:"num_participants,omitempty"`
}

type ExistsData struct {
	Room   ID
	Exists bool
}

type RoomListData struct {
	Rooms []RoomInfo
}

type AllowedData struct {
	Room    ID
	Allowed []string
}

// PublisherJoinedData confirms a publisher-role join. Publishers lists the
// feeds already active in the room at join time.
type PublisherJoinedData struct {
	Room        ID
	Feed        ID
	Display     string
	Description string
	Publishers  []Publisher
	Jsep        *webrtc.SessionDescription `json:"-"`
}

// SubscriberJoinedData confirms a subscriber-role join. The gateway attaches
// its negotiation offer to the same message.
type SubscriberJoinedData struct {
	Room    ID
	Feed    ID
	Display string
	Jsep    *webrtc.SessionDescription `json:"-"`
}

// SlowLinkData reports bandwidth degradation on this endpoint's own feed.
type SlowLinkData struct {
	Feed    ID
	Bitrate int64
}

type ParticipantsData struct {
	Room         ID
	Participants []Participant
}

type CreatedData struct {
	Room      ID
	Permanent bool
}

type DestroyedData struct {
	Room      ID
	Permanent bool
}

type ForwardStartedData struct {
	Room      ID
	Feed      ID
	Forwarder Forwarder
}

type ForwardStoppedData struct {
	Room     ID
	Feed     ID
	StreamID int64
}

// PublisherForwarders groups the active forwarders of one publisher.
type PublisherForwarders struct {
	Feed       ID          `json:"feed"`
	Forwarders []Forwarder `json:"forwarders"`
}

type ForwardListData struct {
	Room       ID
	Publishers []PublisherForwarders
}

// PeerJoiningData announces a participant entering the room, before it
// publishes anything.
type PeerJoiningData struct {
	Room    ID
	Feed    ID
	Display string
}

type PublisherListData struct {
	Publishers []Publisher
}

// ConfiguredData acknowledges a configure/publish-class request. Configured
// carries the gateway's literal acknowledgment value ("ok" on success).
type ConfiguredData struct {
	Room       ID
	Configured string
	Jsep       *webrtc.SessionDescription `json:"-"`
}

type DisplayData struct {
	Feed    ID
	Display string
}

type StartedData struct {
	Feed ID
}

type PausedData struct {
	Feed ID
}

// UnpublishedData reports a feed going away. Feed is this endpoint's own
// feed when the gateway used the "ok" sentinel, otherwise the third-party
// feed named by the message.
type UnpublishedData struct {
	Room ID
	Feed ID
}

// LeavingData reports a participant leaving. The same "ok"-means-self
// convention as UnpublishedData applies.
type LeavingData struct {
	Room   ID
	Feed   ID
	Reason string
}

type KickedData struct {
	Room ID
	Feed ID
}
