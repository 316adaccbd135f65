package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/config"
	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgNotFound = "Parking spot not found"
	msgDeleted  = "Parking spot deleted successfully"
)

type ParkingSpotService interface {
	Save(ctx context.Context, req parkingspot.ParkingSpotRequest) (parkingspot.ParkingSpot, error)
	CheckSpotRegistered(ctx context.Context, req parkingspot.ParkingSpotRequest) (parkingspot.Conflict, error)
	FindAll(ctx context.Context, req parkingspot.PageRequest) (parkingspot.Page, error)
	FindOneByID(ctx context.Context, id string) (parkingspot.ParkingSpot, bool, error)
	Delete(ctx context.Context, id string) error
	UpdateOne(ctx context.Context, existing parkingspot.ParkingSpot, req parkingspot.UpdateParkingSpotRequest) (parkingspot.ParkingSpot, error)
}

type ParkingSpotsHandler struct {
	svc        ParkingSpotService
	timeout    time.Duration
	onConflict func(reason string)
}

func NewParkingSpotsHandler(svc ParkingSpotService, timeout time.Duration) *ParkingSpotsHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &ParkingSpotsHandler{svc: svc, timeout: timeout}
}

// WithConflictHook registers fn to be called with the conflict code of every rejected write.
func (h *ParkingSpotsHandler) WithConflictHook(fn func(reason string)) *ParkingSpotsHandler {
	h.onConflict = fn
	return h
}

func (h *ParkingSpotsHandler) ListParkingSpots(ctx *gin.Context) {
	req, err := parkingspot.ParsePageRequest(ctx.Query("page"), ctx.Query("size"), ctx.Query("sort"))
	if err != nil {
		RespondBadRequest(ctx, "Invalid pagination parameters", gin.H{"reason": err.Error()})
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), h.timeout)
	defer cancel()

	page, err := h.svc.FindAll(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not list parking spots", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, page)
}

func (h *ParkingSpotsHandler) GetParkingSpotByID(ctx *gin.Context) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), h.timeout)
	defer cancel()

	spot, found, err := h.svc.FindOneByID(cctx, id)
	if err != nil {
		RespondInternal(ctx, "Could not fetch parking spot", err)
		return
	}

	if !found {
		RespondNotFound(ctx, msgNotFound)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, spot)
}

func (h *ParkingSpotsHandler) CreateParkingSpot(ctx *gin.Context) {
	var req parkingspot.ParkingSpotRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), h.timeout)
	defer cancel()

	conflict, err := h.svc.CheckSpotRegistered(cctx, req)
	if err != nil {
		RespondInternal(ctx, "Could not create parking spot", err)
		return
	}

	if conflict != parkingspot.ConflictNone {
		h.respondConflict(ctx, conflict)
		return
	}

	spot, err := h.svc.Save(cctx, req)
	if err != nil {
		// lost the race against a concurrent create, or the block is taken
		if c := parkingspot.ConflictFromError(err); c != parkingspot.ConflictNone {
			h.respondConflict(ctx, c)
			return
		}

		RespondInternal(ctx, "Could not create parking spot", err)
		return
	}

	ctx.JSON(http.StatusCreated, spot)
}

func (h *ParkingSpotsHandler) UpdateParkingSpot(ctx *gin.Context) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	var req parkingspot.UpdateParkingSpotRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), h.timeout)
	defer cancel()

	existing, found, err := h.svc.FindOneByID(cctx, id)
	if err != nil {
		RespondInternal(ctx, "Could not update parking spot", err)
		return
	}

	if !found {
		RespondNotFound(ctx, msgNotFound)
		return
	}

	updated, err := h.svc.UpdateOne(cctx, existing, req)
	if err != nil {
		switch {
		case errors.Is(err, parkingspot.ErrNotFound):
			// deleted between the lookup and the write
			RespondNotFound(ctx, msgNotFound)
		case parkingspot.ConflictFromError(err) != parkingspot.ConflictNone:
			h.respondConflict(ctx, parkingspot.ConflictFromError(err))
		default:
			RespondInternal(ctx, "Could not update parking spot", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *ParkingSpotsHandler) DeleteParkingSpot(ctx *gin.Context) {
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), h.timeout)
	defer cancel()

	_, found, err := h.svc.FindOneByID(cctx, id)
	if err != nil {
		RespondInternal(ctx, "Could not delete parking spot", err)
		return
	}

	if !found {
		RespondNotFound(ctx, msgNotFound)
		return
	}

	err = h.svc.Delete(cctx, id)
	if err != nil {
		if errors.Is(err, parkingspot.ErrNotFound) {
			RespondNotFound(ctx, msgNotFound)
			return
		}

		RespondInternal(ctx, "Could not delete parking spot", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *ParkingSpotsHandler) respondConflict(ctx *gin.Context, c parkingspot.Conflict) {
	if h.onConflict != nil {
		h.onConflict(c.Code())
	}
	RespondConflict(ctx, c)
}

// pathID returns the canonical form of the :id parameter, or writes a 400 if it is not a UUID.
// Later log records for the request carry the id as spot_id.
func (h *ParkingSpotsHandler) pathID(ctx *gin.Context) (string, bool) {
	parsed, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		RespondInvalidID(ctx, "parking spot id must be a valid UUID")
		return "", false
	}

	id := parsed.String()
	ctx.Request = ctx.Request.WithContext(observability.WithLogAttrs(ctx.Request.Context(), slog.String("spot_id", id)))
	return id, true
}
