package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tilecore/internal/app/harvest"
	"tilecore/internal/app/maps"
	"tilecore/internal/app/occupancy"
	"tilecore/internal/app/ports"
	"tilecore/internal/app/tiles"
	"tilecore/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var ErrInvalidQuery = errors.New("invalid query parameter")

type Handler struct {
	MapsUC      maps.UseCase
	TilesUC     tiles.UseCase
	OccupancyUC occupancy.UseCase
	HarvestUC   harvest.UseCase
	KPI         kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api/maps")
	api.POST("", h.loadMap)
	api.GET("", h.listMaps)
	api.GET("/:map_id", h.describeMap)
	api.GET("/:map_id/tiles", h.tileAt)
	api.GET("/:map_id/tiles/:tile_id", h.tileByID)
	api.GET("/:map_id/region", h.region)
	api.POST("/:map_id/occupants", h.placeOccupant)
	api.GET("/:map_id/occupants/:occupant_id", h.footprint)
	api.DELETE("/:map_id/occupants/:occupant_id", h.removeOccupant)
	api.POST("/:map_id/occupants/:occupant_id/move", h.moveOccupant)
	api.POST("/:map_id/harvest", h.harvest)
	api.POST("/:map_id/snapshots", h.saveSnapshot)

	s.GET("/ops/kpi", h.kpi)
}

type loadMapRequest struct {
	MapID        string `json:"map_id"`
	DefinitionID string `json:"definition_id"`
	Restore      bool   `json:"restore"`
}

func (h Handler) loadMap(c context.Context, ctx *app.RequestContext) {
	var body loadMapRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.MapsUC.Load(c, maps.LoadRequest{
		MapID:        body.MapID,
		DefinitionID: body.DefinitionID,
		Restore:      body.Restore,
	})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) listMaps(c context.Context, ctx *app.RequestContext) {
	resp, err := h.MapsUC.List(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"maps": resp})
}

func (h Handler) describeMap(c context.Context, ctx *app.RequestContext) {
	resp, err := h.MapsUC.Describe(c, ctx.Param("map_id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) tileAt(c context.Context, ctx *app.RequestContext) {
	x, err := queryInt(ctx, "x")
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	y, err := queryInt(ctx, "y")
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	resp, err := h.TilesUC.Get(c, ctx.Param("map_id"), world.Point{X: x, Y: y})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) tileByID(c context.Context, ctx *app.RequestContext) {
	id, err := strconv.Atoi(ctx.Param("tile_id"))
	if err != nil {
		writeError(c, ctx, fmt.Errorf("%w: tile_id", ErrInvalidQuery))
		return
	}
	resp, err := h.TilesUC.ByID(c, ctx.Param("map_id"), id)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) region(c context.Context, ctx *app.RequestContext) {
	var r world.Rect
	for _, field := range []struct {
		key string
		dst *int
	}{
		{"x", &r.X},
		{"y", &r.Y},
		{"w", &r.Width},
		{"h", &r.Height},
	} {
		v, err := queryInt(ctx, field.key)
		if err != nil {
			writeError(c, ctx, err)
			return
		}
		*field.dst = v
	}
	resp, err := h.TilesUC.Region(c, ctx.Param("map_id"), r)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"region": r, "tiles": resp})
}

func (h Handler) placeOccupant(c context.Context, ctx *app.RequestContext) {
	var body occupancy.PlaceRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	body.MapID = ctx.Param("map_id")
	resp, err := h.OccupancyUC.Place(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) footprint(c context.Context, ctx *app.RequestContext) {
	resp, err := h.TilesUC.Footprint(c, ctx.Param("map_id"), ctx.Param("occupant_id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) moveOccupant(c context.Context, ctx *app.RequestContext) {
	var body occupancy.MoveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	body.MapID = ctx.Param("map_id")
	body.OccupantID = ctx.Param("occupant_id")
	resp, err := h.OccupancyUC.Move(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) removeOccupant(c context.Context, ctx *app.RequestContext) {
	resp, err := h.OccupancyUC.Remove(c, ctx.Param("map_id"), ctx.Param("occupant_id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) harvest(c context.Context, ctx *app.RequestContext) {
	var body harvest.Request
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	body.MapID = ctx.Param("map_id")
	resp, err := h.HarvestUC.Execute(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) saveSnapshot(c context.Context, ctx *app.RequestContext) {
	resp, err := h.MapsUC.SaveSnapshot(c, ctx.Param("map_id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func queryInt(ctx *app.RequestContext, key string) (int, error) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidQuery, key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidQuery, key)
	}
	return n, nil
}

var reasonStatus = map[string]int{
	"out_of_bounds":       consts.StatusBadRequest,
	"invalid_amount":      consts.StatusBadRequest,
	"invalid_occupant":    consts.StatusBadRequest,
	"no_tile":             consts.StatusNotFound,
	"tile_not_found":      consts.StatusNotFound,
	"occupant_not_found":  consts.StatusNotFound,
	"already_occupied":    consts.StatusConflict,
	"already_placed":      consts.StatusConflict,
	"not_walkable":        consts.StatusConflict,
	"not_buildable":       consts.StatusConflict,
	"not_harvestable":     consts.StatusConflict,
	"configuration_error": consts.StatusUnprocessableEntity,
}

func writeError(c context.Context, ctx *app.RequestContext, err error) {
	if code, ok := world.ReasonCode(err); ok {
		status, known := reasonStatus[code]
		if !known {
			status = consts.StatusConflict
		}
		writeErrorBody(ctx, status, code, err.Error())
		return
	}
	switch {
	case errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ports.ErrInvalidID),
		errors.Is(err, maps.ErrInvalidRequest),
		errors.Is(err, tiles.ErrInvalidRequest),
		errors.Is(err, occupancy.ErrInvalidRequest),
		errors.Is(err, harvest.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, maps.ErrDefinitionNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "definition_not_found", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "map_not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		hlog.CtxErrorf(c, "%s %s: %v", ctx.Method(), ctx.Path(), err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
