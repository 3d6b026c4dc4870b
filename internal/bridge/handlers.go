package bridge

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/telemeet/roomgw/videoroom"
)

type createRoomRequest struct {
	Room        string `json:"room"`
	Description string `json:"description"`
	Publishers  *int   `json:"publishers" binding:"omitempty,min=1"`
	Bitrate     *int64 `json:"bitrate" binding:"omitempty,min=0"`
	Permanent   *bool  `json:"permanent"`
	IsPrivate   *bool  `json:"is_private"`
	Pin         string `json:"pin"`
}

type kickRequest struct {
	Feed string `json:"feed" binding:"required"`
}

func (ctl *Controller) listRooms(c *gin.Context) {
	rooms, err := ctl.Rooms.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (ctl *Controller) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := videoroom.CreateOptions{
		Description:   req.Description,
		Permanent:     req.Permanent,
		IsPrivate:     req.IsPrivate,
		MaxPublishers: req.Publishers,
		Bitrate:       req.Bitrate,
		Pin:           req.Pin,
		Secret:        ctl.RoomSecret,
		AdminKey:      ctl.AdminKey,
	}
	if req.Room != "" {
		opts.Room = parseID(req.Room)
	}
	created, err := ctl.Rooms.Create(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (ctl *Controller) roomStatus(c *gin.Context) {
	room := parseID(c.Param("room"))
	exists, err := ctl.Rooms.Exists(c.Request.Context(), room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "exists": exists})
}

func (ctl *Controller) destroyRoom(c *gin.Context) {
	destroyed, err := ctl.Rooms.Destroy(c.Request.Context(), videoroom.DestroyOptions{
		Room:   parseID(c.Param("room")),
		Secret: ctl.RoomSecret,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, destroyed)
}

func (ctl *Controller) listParticipants(c *gin.Context) {
	participants, err := ctl.Rooms.ListParticipants(c.Request.Context(), parseID(c.Param("room")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (ctl *Controller) listForwarders(c *gin.Context) {
	list, err := ctl.Rooms.ListForward(c.Request.Context(), parseID(c.Param("room")), ctl.RoomSecret)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) kick(c *gin.Context) {
	var req kickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := ctl.Rooms.Kick(c.Request.Context(), videoroom.KickOptions{
		Room:   parseID(c.Param("room")),
		Feed:   parseID(req.Feed),
		Secret: ctl.RoomSecret,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID keeps the identifier kind the gateway expects: an all-digit token
// is a numeric id, anything else a string id.
func parseID(s string) videoroom.ID {
	if s != "" && strings.Trim(s, "0123456789") == "" {
		var id videoroom.ID
		_ = id.UnmarshalJSON([]byte(s))
		return id
	}
	return videoroom.StringID(s)
}

func respondError(c *gin.Context, err error) {
	var pe *videoroom.PluginError
	if errors.As(err, &pe) {
		status := http.StatusBadGateway
		switch pe.Code {
		case videoroom.CodeNoSuchRoom:
			status = http.StatusNotFound
		case videoroom.CodeRoomExists:
			status = http.StatusConflict
		case videoroom.CodeUnauthorized:
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": pe.Reason, "code": pe.Code})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
