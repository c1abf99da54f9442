package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/api/responses"
	"github.com/aion-commerce/aion-backend/api/validators"
	cartsvc "github.com/aion-commerce/aion-backend/internal/cart"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/logger"
)

type cartLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	PerfumeID uuid.UUID       `json:"perfume_id"`
	Quantity  int             `json:"quantity"`
	Perfume   *models.Perfume `json:"perfume,omitempty"`
	LineTotal int             `json:"line_total"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total int                `json:"total"`
}

func newCartLineResponse(line models.CartLine) cartLineResponse {
	resp := cartLineResponse{
		ID:        line.ID,
		PerfumeID: line.PerfumeID,
		Quantity:  line.Quantity,
		Perfume:   line.Perfume,
	}
	if line.Perfume != nil {
		resp.LineTotal = line.Perfume.Price * line.Quantity
	}
	return resp
}

func newCartResponse(lines []models.CartLine) cartResponse {
	resp := cartResponse{Lines: make([]cartLineResponse, 0, len(lines))}
	for _, line := range lines {
		lineResp := newCartLineResponse(line)
		resp.Lines = append(resp.Lines, lineResp)
		resp.Total += lineResp.LineTotal
	}
	return resp
}

// CartFetch returns the member's current cart with perfume detail.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.List(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

type addCartLineRequest struct {
	PerfumeID uuid.UUID `json:"perfume_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CartAdd puts a perfume in the cart, merging quantity with an existing line.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.Add(r.Context(), memberID, body.PerfumeID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartLineResponse(*line))
	}
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// CartUpdateLine changes the quantity on one cart line.
func CartUpdateLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCartLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateQuantity(r.Context(), memberID, lineID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartLineResponse(*line))
	}
}

// CartRemoveLine deletes one cart line.
func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), memberID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
