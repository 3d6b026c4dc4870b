package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemeet/roomgw/internal/config"
	"github.com/telemeet/roomgw/videoroom"
)

// fakeRoomService records the last call it saw and plays back scripted
// results.
type fakeRoomService struct {
	existsRoom  videoroom.ID
	createOpts  videoroom.CreateOptions
	destroyOpts videoroom.DestroyOptions
	kickOpts    videoroom.KickOptions
	calls       int

	rooms     []videoroom.RoomInfo
	exists    bool
	created   *videoroom.CreatedData
	destroyed *videoroom.DestroyedData
	forwards  *videoroom.ForwardListData
	err       error
}

func (f *fakeRoomService) Exists(_ context.Context, room videoroom.ID) (bool, error) {
	f.calls++
	f.existsRoom = room
	return f.exists, f.err
}

func (f *fakeRoomService) List(context.Context) ([]videoroom.RoomInfo, error) {
	f.calls++
	return f.rooms, f.err
}

func (f *fakeRoomService) Create(_ context.Context, opts videoroom.CreateOptions) (*videoroom.CreatedData, error) {
	f.calls++
	f.createOpts = opts
	return f.created, f.err
}

func (f *fakeRoomService) Destroy(_ context.Context, opts videoroom.DestroyOptions) (*videoroom.DestroyedData, error) {
	f.calls++
	f.destroyOpts = opts
	return f.destroyed, f.err
}

func (f *fakeRoomService) ListParticipants(context.Context, videoroom.ID) ([]videoroom.Participant, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeRoomService) ListForward(context.Context, videoroom.ID, string) (*videoroom.ForwardListData, error) {
	f.calls++
	return f.forwards, f.err
}

func (f *fakeRoomService) Kick(_ context.Context, opts videoroom.KickOptions) error {
	f.calls++
	f.kickOpts = opts
	return f.err
}

func testRouter(rooms *fakeRoomService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "release",
		AdminKey:   "adminkey",
		RoomSecret: "roompwd",
	}
	return SetupRouter(cfg, rooms)
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListRooms(t *testing.T) {
	fake := &fakeRoomService{rooms: []videoroom.RoomInfo{
		{Room: videoroom.NumericID(7), Description: "demo", NumParticipants: 3},
	}}
	w := doRequest(testRouter(fake), http.MethodGet, "/api/rooms", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"demo"`)
	assert.Contains(t, w.Body.String(), `"room":7`)
}

func TestCreateRoomPassesConfiguredSecrets(t *testing.T) {
	fake := &fakeRoomService{created: &videoroom.CreatedData{Room: videoroom.NumericID(99)}}
	w := doRequest(testRouter(fake), http.MethodPost, "/api/rooms",
		`{"description":"demo","publishers":2,"is_private":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "demo", fake.createOpts.Description)
	require.NotNil(t, fake.createOpts.MaxPublishers)
	assert.Equal(t, 2, *fake.createOpts.MaxPublishers)
	require.NotNil(t, fake.createOpts.IsPrivate)
	assert.True(t, *fake.createOpts.IsPrivate)
	assert.Equal(t, "roompwd", fake.createOpts.Secret)
	assert.Equal(t, "adminkey", fake.createOpts.AdminKey)
	assert.True(t, fake.createOpts.Room.IsZero())
}

func TestCreateRoomRejectsInvalidPublishers(t *testing.T) {
	fake := &fakeRoomService{}
	w := doRequest(testRouter(fake), http.MethodPost, "/api/rooms", `{"publishers":0}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, fake.calls)
}

func TestRoomStatusKeepsIDKind(t *testing.T) {
	fake := &fakeRoomService{exists: true}
	r := testRouter(fake)

	w := doRequest(r, http.MethodGet, "/api/rooms/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fake.existsRoom.Equal(videoroom.NumericID(7)))
	assert.Contains(t, w.Body.String(), `"exists":true`)

	w = doRequest(r, http.MethodGet, "/api/rooms/lobby", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fake.existsRoom.Equal(videoroom.StringID("lobby")))
}

func TestDestroyRoomMapsGatewayErrors(t *testing.T) {
	fake := &fakeRoomService{err: &videoroom.PluginError{Code: videoroom.CodeNoSuchRoom, Reason: "No such room"}}
	w := doRequest(testRouter(fake), http.MethodDelete, "/api/rooms/7", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":426`)
	assert.True(t, fake.destroyOpts.Room.Equal(videoroom.NumericID(7)))
	assert.Equal(t, "roompwd", fake.destroyOpts.Secret)
}

func TestCreateRoomConflict(t *testing.T) {
	fake := &fakeRoomService{err: &videoroom.PluginError{Code: videoroom.CodeRoomExists, Reason: "Room exists"}}
	w := doRequest(testRouter(fake), http.MethodPost, "/api/rooms", `{"room":"7"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestKick(t *testing.T) {
	fake := &fakeRoomService{}
	w := doRequest(testRouter(fake), http.MethodPost, "/api/rooms/7/kick", `{"feed":"13"}`)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, fake.kickOpts.Room.Equal(videoroom.NumericID(7)))
	assert.True(t, fake.kickOpts.Feed.Equal(videoroom.NumericID(13)))
}

func TestKickRequiresFeed(t *testing.T) {
	fake := &fakeRoomService{}
	w := doRequest(testRouter(fake), http.MethodPost, "/api/rooms/7/kick", `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, fake.calls)
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	fake := &fakeRoomService{err: context.DeadlineExceeded}
	w := doRequest(testRouter(fake), http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
}
