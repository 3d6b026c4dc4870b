package videoroom

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/telemeet/roomgw/janus"
)

// PluginName is the namespace the gateway uses for videoroom traffic.
const PluginName = "janus.plugin.videoroom"

// okSentinel is the status string the gateway overloads to mean "this refers
// to your own feed" in unpublished/leaving/left notifications. The literal
// comparison is load-bearing: any other value is a third-party feed id.
const okSentinel = `"ok"`

type wirePublisher struct {
	ID      ID     `json:"id"`
	Display string `json:"display"`
}

type wireParticipant struct {
	ID        ID     `json:"id"`
	Display   string `json:"display"`
	Publisher bool   `json:"publisher"`
}

type wirePublisherForwarders struct {
	PublisherID ID              `json:"publisher_id"`
	Forwarders  []wireRTPStream `json:"rtp_forwarders"`
}

// roomData is the union of every field the plugin data block may carry.
// Optional fields whose mere presence disambiguates the message kind are
// pointers; the classifier tests them in the fixed priority order below.
type roomData struct {
	VideoRoom string `json:"videoroom"`

	Room        ID     `json:"room"`
	ID          ID     `json:"id"`
	Display     string `json:"display"`
	Description string `json:"description"`
	Permanent   *bool  `json:"permanent"`

	// success sub-kinds
	Exists  *bool       `json:"exists"`
	List    *[]RoomInfo `json:"list"`
	Allowed *[]string   `json:"allowed"`

	// membership snapshots
	Publishers   *[]wirePublisher  `json:"publishers"`
	Participants []wireParticipant `json:"participants"`

	// forwarding
	PublisherID ID                        `json:"publisher_id"`
	RTPStream   *wireRTPStream            `json:"rtp_stream"`
	StreamID    int64                     `json:"stream_id"`
	Forwarders  []wirePublisherForwarders `json:"rtp_forwarders"`

	CurrentBitrate int64 `json:"current-bitrate"`

	// event sub-kinds
	ErrorCode   int             `json:"error_code"`
	ErrorReason string          `json:"error"`
	Joining     *wirePublisher  `json:"joining"`
	Configured  string          `json:"configured"`
	Started     string          `json:"started"`
	Paused      string          `json:"paused"`
	Unpublished json.RawMessage `json:"unpublished"`
	Leaving     json.RawMessage `json:"leaving"`
	Reason      string          `json:"reason"`
	Kicked      ID              `json:"kicked"`
	Left        string          `json:"left"`
}

// classify normalizes one inbound message into an Event, or nil when the
// message does not belong to this plugin layer. Its only side effect is
// recording room/feed identity on joined/attached confirmations.
func (h *Handle) classify(msg *janus.Message) *Event {
	pd := msg.Plugindata
	if pd == nil || pd.Plugin != PluginName || len(pd.Data) == 0 {
		return nil
	}
	var d roomData
	if err := json.Unmarshal(pd.Data, &d); err != nil {
		log.Warn().Err(err).Str("module", "videoroom.classifier").Msg("undecodable plugin data")
		return nil
	}

	var evt *Event
	switch d.VideoRoom {
	case "success":
		evt = classifySuccess(&d)
	case "joined":
		h.setIdentity(d.Room, d.ID)
		evt = &Event{Name: EventPublisherJoined, Data: PublisherJoinedData{
			Room:        d.Room,
			Feed:        d.ID,
			Description: d.Description,
			Publishers:  toPublishers(d.Publishers),
		}}
	case "attached":
		h.setIdentity(d.Room, d.ID)
		evt = &Event{Name: EventSubscriberJoined, Data: SubscriberJoinedData{
			Room:    d.Room,
			Feed:    d.ID,
			Display: d.Display,
		}}
	case "slow_link":
		evt = &Event{Name: EventSlowLink, Data: SlowLinkData{
			Feed:    h.Feed(),
			Bitrate: d.CurrentBitrate,
		}}
	case "participants":
		evt = &Event{Name: EventParticipantsList, Data: ParticipantsData{
			Room:         d.Room,
			Participants: toParticipants(d.Participants),
		}}
	case "created":
		evt = &Event{Name: EventCreated, Data: CreatedData{Room: d.Room, Permanent: boolValue(d.Permanent)}}
	case "destroyed":
		evt = &Event{Name: EventDestroyed, Data: DestroyedData{Room: d.Room, Permanent: boolValue(d.Permanent)}}
	case "rtp_forward":
		evt = &Event{Name: EventForwardStarted, Data: ForwardStartedData{
			Room:      d.Room,
			Feed:      d.PublisherID,
			Forwarder: forwarderFromStream(d.RTPStream),
		}}
	case "stop_rtp_forward":
		evt = &Event{Name: EventForwardStopped, Data: ForwardStoppedData{
			Room:     d.Room,
			Feed:     d.PublisherID,
			StreamID: d.StreamID,
		}}
	case "forwarders":
		evt = &Event{Name: EventForwardList, Data: ForwardListData{
			Room:       d.Room,
			Publishers: toPublisherForwarders(d.Forwarders),
		}}
	case "event":
		evt = h.classifyNotification(&d)
	default:
		return nil
	}
	if evt == nil {
		return nil
	}
	evt.Jsep = msg.Jsep
	return evt
}

// classifySuccess disambiguates a "success" block by which of three mutually
// exclusive fields is present. First match wins; none means generic success.
func classifySuccess(d *roomData) *Event {
	switch {
	case d.Exists != nil:
		return &Event{Name: EventExists, Data: ExistsData{Room: d.Room, Exists: *d.Exists}}
	case d.List != nil:
		return &Event{Name: EventRoomList, Data: RoomListData{Rooms: *d.List}}
	case d.Allowed != nil:
		return &Event{Name: EventAllowed, Data: AllowedData{Room: d.Room, Allowed: *d.Allowed}}
	default:
		return &Event{Name: EventSuccess}
	}
}

// classifyNotification fans an "event" block out into its notification
// kinds. The payloads are not self-disambiguating beyond field presence, so
// the tests run in a fixed priority order and the first match wins.
func (h *Handle) classifyNotification(d *roomData) *Event {
	switch {
	case d.ErrorCode != 0 || d.ErrorReason != "":
		return &Event{Name: EventError, Data: &PluginError{Code: d.ErrorCode, Reason: d.ErrorReason}}
	case d.Joining != nil:
		return &Event{Name: EventPeerJoining, Data: PeerJoiningData{
			Room:    d.Room,
			Feed:    d.Joining.ID,
			Display: d.Joining.Display,
		}}
	case d.Publishers != nil:
		return &Event{Name: EventPublisherList, Data: PublisherListData{Publishers: toPublishers(d.Publishers)}}
	case d.Configured != "":
		return &Event{Name: EventConfigured, Data: ConfiguredData{Room: d.Room, Configured: d.Configured}}
	case d.Display != "":
		return &Event{Name: EventDisplayChanged, Data: DisplayData{Feed: d.ID, Display: d.Display}}
	case d.Started != "":
		return &Event{Name: EventStarted, Data: StartedData{Feed: h.Feed()}}
	case d.Paused != "":
		return &Event{Name: EventPaused, Data: PausedData{Feed: h.Feed()}}
	case d.Unpublished != nil:
		return &Event{Name: EventUnpublished, Data: UnpublishedData{
			Room: d.Room,
			Feed: h.feedOrSelf(d.Unpublished),
		}}
	case d.Leaving != nil:
		return &Event{Name: EventLeaving, Data: LeavingData{
			Room:   d.Room,
			Feed:   h.feedOrSelf(d.Leaving),
			Reason: d.Reason,
		}}
	case !d.Kicked.IsZero():
		return &Event{Name: EventKicked, Data: KickedData{Room: d.Room, Feed: d.Kicked}}
	case d.Left != "":
		// Subscriber-side leave confirmation; always refers to self.
		return &Event{Name: EventLeaving, Data: LeavingData{Room: d.Room, Feed: h.Feed()}}
	default:
		return nil
	}
}

// feedOrSelf resolves the "ok"-sentinel convention: the sentinel names this
// endpoint's own feed, anything else is a third-party feed id.
func (h *Handle) feedOrSelf(raw json.RawMessage) ID {
	if string(raw) == okSentinel {
		return h.Feed()
	}
	var id ID
	_ = id.UnmarshalJSON(raw)
	return id
}

func toPublishers(in *[]wirePublisher) []Publisher {
	if in == nil {
		return nil
	}
	out := make([]Publisher, 0, len(*in))
	for _, p := range *in {
		out = append(out, Publisher{Feed: p.ID, Display: p.Display})
	}
	return out
}

func toParticipants(in []wireParticipant) []Participant {
	out := make([]Participant, 0, len(in))
	for _, p := range in {
		out = append(out, Participant{Feed: p.ID, Display: p.Display, Publisher: p.Publisher})
	}
	return out
}

func toPublisherForwarders(in []wirePublisherForwarders) []PublisherForwarders {
	out := make([]PublisherForwarders, 0, len(in))
	for _, pf := range in {
		fwds := make([]Forwarder, 0, len(pf.Forwarders))
		for i := range pf.Forwarders {
			fwds = append(fwds, forwarderFromStream(&pf.Forwarders[i]))
		}
		out = append(out, PublisherForwarders{Feed: pf.PublisherID, Forwarders: fwds})
	}
	return out
}

func boolValue(b *bool) bool { return b != nil && *b }
