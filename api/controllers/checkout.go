package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aion-commerce/aion-backend/api/responses"
	"github.com/aion-commerce/aion-backend/api/validators"
	checkoutsvc "github.com/aion-commerce/aion-backend/internal/checkout"
	"github.com/aion-commerce/aion-backend/pkg/db/models"
	"github.com/aion-commerce/aion-backend/pkg/enums"
	pkgerrors "github.com/aion-commerce/aion-backend/pkg/errors"
	"github.com/aion-commerce/aion-backend/pkg/logger"
)

type checkoutRequest struct {
	IssuedCouponID  *uuid.UUID `json:"issued_coupon_id,omitempty"`
	PaymentMethod   string     `json:"payment_method" validate:"required"`
	ReceiverName    string     `json:"receiver_name" validate:"required"`
	ReceiverPhone   string     `json:"receiver_phone" validate:"required"`
	ShippingZipcode string     `json:"shipping_zipcode" validate:"required"`
	ShippingAddress string     `json:"shipping_address" validate:"required"`
}

type checkoutResponse struct {
	Order        orderResponse `json:"order"`
	PointsEarned int           `json:"points_earned"`
}

type orderResponse struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	TotalAmount    int                 `json:"total_amount"`
	DiscountAmount int                 `json:"discount_amount"`
	FinalAmount    int                 `json:"final_amount"`
	PaymentMethod  string              `json:"payment_method"`
	IssuedCouponID *uuid.UUID          `json:"issued_coupon_id,omitempty"`
	Lines          []orderLineResponse `json:"lines"`
	CreatedAt      string              `json:"created_at"`
}

type orderLineResponse struct {
	LineID      uuid.UUID `json:"line_id"`
	PerfumeID   uuid.UUID `json:"perfume_id"`
	PerfumeName string    `json:"perfume_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int       `json:"unit_price"`
	FinalPrice  int       `json:"final_price"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	resp := orderResponse{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		FinalAmount:    order.FinalAmount,
		PaymentMethod:  string(order.PaymentMethod),
		IssuedCouponID: order.IssuedCouponID,
		Lines:          make([]orderLineResponse, 0, len(order.Lines)),
		CreatedAt:      order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			LineID:      line.ID,
			PerfumeID:   line.PerfumeID,
			PerfumeName: line.PerfumeNameSnapshot,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			FinalPrice:  line.FinalPrice,
		})
	}
	return resp
}

// Checkout submits the member's cart as an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		memberID, err := memberIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method"))
			return
		}

		result, err := svc.Execute(r.Context(), memberID, checkoutsvc.Input{
			IssuedCouponID:  body.IssuedCouponID,
			PaymentMethod:   method,
			ReceiverName:    body.ReceiverName,
			ReceiverPhone:   body.ReceiverPhone,
			ShippingZipcode: body.ShippingZipcode,
			ShippingAddress: body.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithOrderNumber(r.Context(), result.Order.OrderNumber)
			logg.Info(ctx, "checkout.completed")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:        newOrderResponse(result.Order),
			PointsEarned: result.PointsEarned,
		})
	}
}
