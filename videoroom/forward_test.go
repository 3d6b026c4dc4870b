package videoroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardStartedProjection(t *testing.T) {
	h := NewHandle(nil, newFakeLedger())
	require.True(t, h.HandleMessage(pluginMsg(`{
		"videoroom": "rtp_forward",
		"room": 7,
		"publisher_id": 42,
		"rtp_stream": {
			"host": "10.0.0.9",
			"video": 5004,
			"video_rtcp": 5005,
			"video_stream_id": 3
		}
	}`)))

	evt := requireEvent(t, h)
	require.Equal(t, EventForwardStarted, evt.Name)
	data := evt.Data.(ForwardStartedData)
	assert.True(t, data.Feed.Equal(NumericID(42)))

	fwd := data.Forwarder
	assert.Equal(t, "10.0.0.9", fwd.Host)
	require.NotNil(t, fwd.Video)
	assert.Equal(t, 5004, fwd.Video.Port)
	assert.Equal(t, 5005, fwd.Video.RTCPPort)
	assert.Equal(t, int64(3), fwd.Video.StreamID)
	assert.Nil(t, fwd.Audio)
	assert.Nil(t, fwd.Data)
}

// The list snapshot and the start confirmation use the same per-media wire
// shape; both must project to the same Forwarder.
func TestForwardListMatchesStartProjection(t *testing.T) {
	h := NewHandle(nil, newFakeLedger())
	require.True(t, h.HandleMessage(pluginMsg(`{
		"videoroom": "forwarders",
		"room": 7,
		"rtp_forwarders": [
			{
				"publisher_id": 42,
				"rtp_forwarders": [
					{"host": "10.0.0.9", "audio": 6000, "audio_rtcp": 6001, "audio_stream_id": 1,
					 "video": 5004, "video_rtcp": 5005, "video_stream_id": 3},
					{"host": "10.0.0.9", "data": 7000, "data_stream_id": 5}
				]
			}
		]
	}`)))

	evt := requireEvent(t, h)
	require.Equal(t, EventForwardList, evt.Name)
	data := evt.Data.(ForwardListData)
	require.Len(t, data.Publishers, 1)

	pub := data.Publishers[0]
	assert.True(t, pub.Feed.Equal(NumericID(42)))
	require.Len(t, pub.Forwarders, 2)

	both := pub.Forwarders[0]
	require.NotNil(t, both.Audio)
	require.NotNil(t, both.Video)
	assert.Nil(t, both.Data)
	assert.Equal(t, 6000, both.Audio.Port)
	assert.Equal(t, int64(1), both.Audio.StreamID)
	assert.Equal(t, 5004, both.Video.Port)

	dataOnly := pub.Forwarders[1]
	assert.Nil(t, dataOnly.Audio)
	assert.Nil(t, dataOnly.Video)
	require.NotNil(t, dataOnly.Data)
	assert.Equal(t, 7000, dataOnly.Data.Port)
	assert.Equal(t, int64(5), dataOnly.Data.StreamID)
}

func TestForwardStopped(t *testing.T) {
	h := NewHandle(nil, newFakeLedger())
	require.True(t, h.HandleMessage(pluginMsg(`{
		"videoroom": "stop_rtp_forward",
		"room": 7,
		"publisher_id": 42,
		"stream_id": 3
	}`)))

	evt := requireEvent(t, h)
	require.Equal(t, EventForwardStopped, evt.Name)
	data := evt.Data.(ForwardStoppedData)
	assert.True(t, data.Feed.Equal(NumericID(42)))
	assert.Equal(t, int64(3), data.StreamID)
}
