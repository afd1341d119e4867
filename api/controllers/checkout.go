package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hos-market/storefront-api/api/middleware"
	"github.com/hos-market/storefront-api/api/responses"
	"github.com/hos-market/storefront-api/api/validators"
	"github.com/hos-market/storefront-api/internal/multicheckout"
	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/hos-market/storefront-api/pkg/logger"
)

// CheckoutSplit starts checkout on a cart, splitting it into per-seller
// sessions when more than one seller is involved.
func CheckoutSplit(svc multicheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		clientKey, err := requireClientKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload splitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), clientKey, payload.CheckoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSplitResponse(result))
	}
}

// CheckoutPlan reports the client's active multi-seller plan, if any.
func CheckoutPlan(svc multicheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		clientKey, err := requireClientKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := svc.Active(r.Context(), clientKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProgressResponse(progress))
	}
}

// CheckoutComplete pays for and completes the session at the plan's cursor.
func CheckoutComplete(svc multicheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		clientKey, err := requireClientKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload completeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		progress, err := svc.CompleteCurrent(r.Context(), clientKey, multicheckout.PaymentDetails{
			Gateway: payload.Gateway,
			Token:   payload.Token,
			Amount:  payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProgressResponse(progress))
	}
}

// CheckoutAbandon drops the client's plan. Sessions already completed keep
// their orders; remaining sessions are simply left behind.
func CheckoutAbandon(svc multicheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		clientKey, err := requireClientKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Abandon(r.Context(), clientKey); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "abandoned"})
	}
}

func requireClientKey(r *http.Request) (string, error) {
	key := middleware.ClientKeyFromContext(r.Context())
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "X-Client-Key header required")
	}
	return key, nil
}

type splitRequest struct {
	CheckoutID string `json:"checkoutId" validate:"required"`
}

type completeRequest struct {
	Gateway string          `json:"gateway" validate:"required"`
	Token   string          `json:"token" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

type sessionResponse struct {
	SellerID   string `json:"sellerId"`
	SellerName string `json:"sellerName"`
	CheckoutID string `json:"checkoutId"`
	Token      string `json:"token"`
}

type splitResponse struct {
	State      string            `json:"state"`
	CheckoutID string            `json:"checkoutId,omitempty"`
	Sessions   []sessionResponse `json:"sessions,omitempty"`
	Warning    string            `json:"warning,omitempty"`
}

type progressResponse struct {
	State    string           `json:"state"`
	Current  *sessionResponse `json:"current,omitempty"`
	Position int              `json:"position"`
	Total    int              `json:"total"`
	Orders   []string         `json:"orders"`
}

func newSplitResponse(result *multicheckout.SplitResult) splitResponse {
	resp := splitResponse{
		State:      string(result.State),
		CheckoutID: result.CheckoutID,
		Warning:    result.Warning,
	}
	if result.Plan != nil {
		resp.Sessions = make([]sessionResponse, 0, len(result.Plan.Checkouts))
		for _, session := range result.Plan.Checkouts {
			resp.Sessions = append(resp.Sessions, newSessionResponse(session))
		}
	}
	return resp
}

func newProgressResponse(progress *multicheckout.Progress) progressResponse {
	resp := progressResponse{
		State:    string(progress.State),
		Position: progress.Position,
		Total:    progress.Total,
		Orders:   progress.Orders,
	}
	if resp.Orders == nil {
		resp.Orders = []string{}
	}
	if progress.Current != nil {
		current := newSessionResponse(*progress.Current)
		resp.Current = &current
	}
	return resp
}

func newSessionResponse(session multicheckout.SessionRef) sessionResponse {
	return sessionResponse{
		SellerID:   session.SellerID,
		SellerName: session.SellerName,
		CheckoutID: session.CheckoutID,
		Token:      session.Token,
	}
}
