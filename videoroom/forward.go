package videoroom

// MediaForward is the per-media-type part of a forwarder descriptor.
type MediaForward struct {
	Port     int   `json:"port"`
	RTCPPort int   `json:"rtcp_port,omitempty"`
	StreamID int64 `json:"stream_id,omitempty"`
}

// Forwarder describes one gateway-side RTP forwarding task. A media block
// is present only for the media types the gateway actually forwards.
type Forwarder struct {
	Host  string        `json:"host"`
	Audio *MediaForward `json:"audio,omitempty"`
	Video *MediaForward `json:"video,omitempty"`
	Data  *MediaForward `json:"data,omitempty"`
}

// wireRTPStream mirrors the gateway's per-media forwarding report. A zero
// port means that media type is not forwarded, not an error.
type wireRTPStream struct {
	Host          string `json:"host"`
	AudioPort     int    `json:"audio"`
	AudioRTCPPort int    `json:"audio_rtcp"`
	AudioStreamID int64  `json:"audio_stream_id"`
	VideoPort     int    `json:"video"`
	VideoRTCPPort int    `json:"video_rtcp"`
	VideoStreamID int64  `json:"video_stream_id"`
	DataPort      int    `json:"data"`
	DataStreamID  int64  `json:"data_stream_id"`
}

func forwarderFromStream(s *wireRTPStream) Forwarder {
	if s == nil {
		return Forwarder{}
	}
	f := Forwarder{Host: s.Host}
	if s.AudioPort != 0 {
		f.Audio = &MediaForward{Port: s.AudioPort, RTCPPort: s.AudioRTCPPort, StreamID: s.AudioStreamID}
	}
	if s.VideoPort != 0 {
		f.Video = &MediaForward{Port: s.VideoPort, RTCPPort: s.VideoRTCPPort, StreamID: s.VideoStreamID}
	}
	if s.DataPort != 0 {
		f.Data = &MediaForward{Port: s.DataPort, StreamID: s.DataStreamID}
	}
	return f
}
