package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aion-commerce/aion-backend/api/responses"
	"github.com/aion-commerce/aion-backend/api/validators"
	"github.com/aion-commerce/aion-backend/internal/catalog"
	"github.com/aion-commerce/aion-backend/internal/inventory"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/logger"
	"github.com/aion-commerce/aion-backend/pkg/pagination"
)

type perfumeResponse struct {
	*models.Perfume
	InStock bool `json:"in_stock"`
}

func newPerfumeResponse(perfume *models.Perfume) perfumeResponse {
	return perfumeResponse{Perfume: perfume, InStock: perfume != nil && perfume.StockCount > 0}
}

type perfumePageResponse struct {
	Perfumes   []perfumeResponse `json:"perfumes"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

// PerfumeList serves the shopper-facing catalog. Only active listings appear.
func PerfumeList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listPerfumes(svc, logg, true)
}

// AdminPerfumeList serves the back-office catalog including deactivated listings.
func AdminPerfumeList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listPerfumes(svc, logg, false)
}

func listPerfumes(svc catalog.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := catalog.ListFilter{
			Brand:      validators.ParseQueryString(r, "brand"),
			Gender:     validators.ParseQueryString(r, "gender"),
			ActiveOnly: activeOnly,
		}

		page, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := perfumePageResponse{
			Perfumes:   make([]perfumeResponse, 0, len(page.Perfumes)),
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		}
		for i := range page.Perfumes {
			out.Perfumes = append(out.Perfumes, newPerfumeResponse(&page.Perfumes[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// PerfumeGet returns one listing by id.
func PerfumeGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		perfumeID, err := validators.ParsePathUUID(chi.URLParam(r, "perfumeId"), "perfumeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perfume, err := svc.Get(r.Context(), perfumeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPerfumeResponse(perfume))
	}
}

// AdminPerfumeCreate adds a listing, optionally seeded with opening stock.
func AdminPerfumeCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body catalog.CreatePerfumeInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perfume, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPerfumeResponse(perfume))
	}
}

// AdminPerfumeUpdate edits listing fields. Stock moves only through adjustments.
func AdminPerfumeUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		perfumeID, err := validators.ParsePathUUID(chi.URLParam(r, "perfumeId"), "perfumeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body catalog.UpdatePerfumeInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perfume, err := svc.Update(r.Context(), perfumeID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPerfumeResponse(perfume))
	}
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// AdminPerfumeSetActive toggles a listing's storefront visibility.
func AdminPerfumeSetActive(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		perfumeID, err := validators.ParsePathUUID(chi.URLParam(r, "perfumeId"), "perfumeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), perfumeID, *body.IsActive); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": perfumeID, "is_active": *body.IsActive})
	}
}

type adjustStockRequest struct {
	ChangeType string `json:"change_type" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Reason     string `json:"reason" validate:"required"`
}

// AdminPerfumeAdjustStock records a manual stock movement with its audit row.
func AdminPerfumeAdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		perfumeID, err := validators.ParsePathUUID(chi.URLParam(r, "perfumeId"), "perfumeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		changeType := enums.StockChangeType(body.ChangeType)
		if !changeType.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "change_type must be in or out"))
			return
		}

		adjustment, err := svc.AdjustStock(r.Context(), inventory.AdjustStockInput{
			PerfumeID:  perfumeID,
			ChangeType: changeType,
			Quantity:   body.Quantity,
			Reason:     body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, adjustment)
	}
}

// AdminPerfumeStockHistory lists the adjustment trail for one perfume.
func AdminPerfumeStockHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		perfumeID, err := validators.ParsePathUUID(chi.URLParam(r, "perfumeId"), "perfumeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), perfumeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

// AdminInventoryReconcile compares stock counters against adjustment sums.
func AdminInventoryReconcile(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		if err := svc.Reconcile(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "stock drift detected"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "consistent"})
	}
}
