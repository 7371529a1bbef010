package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fleetgen/backend/api/transport"
	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/pkg/httpcontext"
	"github.com/fleetgen/backend/repository"
	vehicleUC "github.com/fleetgen/backend/usecase/vehicle"
)

type VehicleHandler struct {
	baseHandler
	uc *vehicleUC.UseCase
}

func NewVehicleHandler(uc *vehicleUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List vehicles
// @Tags vehicles
// @Router /api/v1/vehicles [get]
func (h *VehicleHandler) ListVehicles(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	query := vehicleUC.ListQuery{
		Filter: repository.VehicleFilter{
			Name:           string(args.Peek("name")),
			OrganizationID: string(args.Peek("organizationId")),
			Active:         parseBoolPtr(string(args.Peek("active"))),
		},
		Pagination: repository.VehiclePagination{
			Page:  parseInt(string(args.Peek("page")), 0),
			Count: parseInt(string(args.Peek("count")), 25),
		},
		Sort: repository.VehicleSort{
			Field: string(args.Peek("sortField")),
			Asc:   string(args.Peek("sortDirection")) == "asc",
		},
		QueryTotalResultCount: args.GetBool("queryTotalResultCount"),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.List(stdCtx, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Get vehicle
// @Tags vehicles
// @Router /api/v1/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	organizationID := string(ctx.QueryArgs().Peek("organizationId"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	vehicle, err := h.uc.Get(stdCtx, id, organizationID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, vehicle)
}

// @Summary Create vehicle
// @Tags vehicles
// @Router /api/v1/vehicles [post]
func (h *VehicleHandler) CreateVehicle(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	input, ok := h.parseInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, actor, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update vehicle
// @Tags vehicles
// @Router /api/v1/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	merge := ctx.QueryArgs().GetBool("merge")

	input, ok := h.parseInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, actor, id, input, merge)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete vehicles
// @Tags vehicles
// @Router /api/v1/vehicles [delete]
func (h *VehicleHandler) DeleteVehicles(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	var req transport.DeleteVehiclesRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Delete(stdCtx, actor, req.IDs)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

func (h *VehicleHandler) parseInput(ctx *fasthttp.RequestCtx) (vehicleUC.Input, bool) {
	var req transport.VehicleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return vehicleUC.Input{}, false
	}
	return vehicleUC.Input{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Active:         req.Active,
	}, true
}

func (h baseHandler) actor(ctx *fasthttp.RequestCtx) string {
	actor := string(ctx.Request.Header.Peek("X-Actor"))
	if actor == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing actor identity", nil))
	}
	return actor
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseBoolPtr(value string) *bool {
	if value == "" {
		return nil
	}
	if v, err := strconv.ParseBool(value); err == nil {
		return &v
	}
	return nil
}
