// Package bridge exposes room management of a remote videoroom gateway as a
// small REST surface, for operators and tooling that speak HTTP rather than
// the gateway's signaling protocol.
package bridge

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/telemeet/roomgw/internal/config"
	"github.com/telemeet/roomgw/videoroom"
)

// RoomService is the slice of the videoroom client the bridge needs.
// Satisfied by *videoroom.Handle.
type RoomService interface {
	Exists(ctx context.Context, room videoroom.ID) (bool, error)
	List(ctx context.Context) ([]videoroom.RoomInfo, error)
	Create(ctx context.Context, opts videoroom.CreateOptions) (*videoroom.CreatedData, error)
	Destroy(ctx context.Context, opts videoroom.DestroyOptions) (*videoroom.DestroyedData, error)
	ListParticipants(ctx context.Context, room videoroom.ID) ([]videoroom.Participant, error)
	ListForward(ctx context.Context, room videoroom.ID, secret string) (*videoroom.ForwardListData, error)
	Kick(ctx context.Context, opts videoroom.KickOptions) error
}

type Controller struct {
	Rooms      RoomService
	AdminKey   string
	RoomSecret string
}

func SetupRouter(cfg *config.Config, rooms RoomService) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctl := &Controller{Rooms: rooms, AdminKey: cfg.AdminKey, RoomSecret: cfg.RoomSecret}

	api := r.Group("/api")
	api.GET("/rooms", ctl.listRooms)
	api.POST("/rooms", ctl.createRoom)
	api.GET("/rooms/:room", ctl.roomStatus)
	api.DELETE("/rooms/:room", ctl.destroyRoom)
	api.GET("/rooms/:room/participants", ctl.listParticipants)
	api.GET("/rooms/:room/forwarders", ctl.listForwarders)
	api.POST("/rooms/:room/kick", ctl.kick)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "bridge").Msg("router setup")
	return r
}
