package controllers

import (
	"net/http"
	"time"

	"github.com/sellerdeskhq/sellerdesk-backend/api/responses"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/pricing"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/logger"
)

// PricingResolve answers the unit price for a product in a pricing context.
// as_of defaults to now; it is accepted so carts and quotes can be repriced
// against a historical instant.
func PricingResolve(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		productID := query.Get("product_id")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product_id query parameter is required"))
			return
		}
		currency, err := enums.ParseCurrency(query.Get("currency"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		asOf := time.Now().UTC()
		if raw := query.Get("as_of"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "as_of must be RFC 3339"))
				return
			}
			asOf = parsed.UTC()
		}

		resolution, err := svc.ResolvePrice(r.Context(), pricing.ResolveRequest{
			ProductID:       productID,
			Currency:        currency,
			CustomerGroupID: query.Get("customer_group_id"),
			AsOf:            asOf,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}
