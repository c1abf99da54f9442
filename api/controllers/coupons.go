package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/api/responses"
	"github.com/aion-commerce/aion-backend/api/validators"
	couponsvc "github.com/aion-commerce/aion-backend/internal/coupons"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/logger"
)

type issuedCouponResponse struct {
	ID        uuid.UUID                `json:"id"`
	Used      bool                     `json:"used"`
	UsedAt    *time.Time               `json:"used_at,omitempty"`
	Coupon    *models.CouponDefinition `json:"coupon,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

func newIssuedCouponResponse(issued models.IssuedCoupon) issuedCouponResponse {
	return issuedCouponResponse{
		ID:        issued.ID,
		Used:      issued.Used,
		UsedAt:    issued.UsedAt,
		Coupon:    issued.Coupon,
		CreatedAt: issued.CreatedAt,
	}
}

// CouponList returns the member's issued coupons with their definitions.
func CouponList(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issued, err := svc.ListForMember(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]issuedCouponResponse, 0, len(issued))
		for _, entry := range issued {
			out = append(out, newIssuedCouponResponse(entry))
		}
		responses.WriteSuccess(w, out)
	}
}

// CouponIssue hands the member a redemption of the given definition.
func CouponIssue(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issued, err := svc.Issue(r.Context(), couponID, memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newIssuedCouponResponse(*issued))
	}
}

// AdminCouponDefinitionCreate registers a new coupon template.
func AdminCouponDefinitionCreate(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var body couponsvc.CreateDefinitionInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		definition, err := svc.CreateDefinition(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, definition)
	}
}

// AdminCouponDefinitionList lists every coupon template.
func AdminCouponDefinitionList(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		definitions, err := svc.ListDefinitions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, definitions)
	}
}
