package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hos-market/storefront-api/api/responses"
	cartsvc "github.com/hos-market/storefront-api/internal/cart"
	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/hos-market/storefront-api/pkg/logger"
)

// CartView returns the cart grouped by seller, with per-group subtotals and
// a flag telling the frontend whether checkout will split.
func CartView(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		checkoutID := chi.URLParam(r, "checkoutID")
		if checkoutID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required"))
			return
		}

		view, err := svc.View(r.Context(), checkoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}
