package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sellerdeskhq/sellerdesk-backend/api/responses"
	"github.com/sellerdeskhq/sellerdesk-backend/api/validators"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/pricing"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/logger"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/pagination"
)

type priceBookRequest struct {
	Name            string     `json:"name" validate:"required,min=1,max=120"`
	Currency        string     `json:"currency" validate:"required,iso4217"`
	IsDefault       bool       `json:"is_default"`
	CustomerGroupID *string    `json:"customer_group_id,omitempty" validate:"omitempty,min=1,max=64"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
}

func (r priceBookRequest) toInput() pricing.PriceBookInput {
	return pricing.PriceBookInput{
		Name:            r.Name,
		Currency:        enums.Currency(r.Currency),
		IsDefault:       r.IsDefault,
		CustomerGroupID: r.CustomerGroupID,
		ValidFrom:       r.ValidFrom,
		ValidTo:         r.ValidTo,
	}
}

func PriceBookCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreatePriceBook(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func PriceBookUpdate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "priceBookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req priceBookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdatePriceBook(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func PriceBookDelete(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "priceBookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePriceBook(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func PriceBookGet(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "priceBookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.GetPriceBook(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

func PriceBookList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		books, next, err := svc.ListPriceBooks(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"price_books": books}
		if next != "" {
			payload["next_cursor"] = next
		}
		responses.WriteSuccess(w, payload)
	}
}

type priceEntryRequest struct {
	UnitAmount decimal.Decimal `json:"unit_amount" validate:"required"`
}

func PriceBookUpsertEntry(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "priceBookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var req priceEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpsertEntry(r.Context(), id, productID, req.UnitAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func PriceBookRemoveEntry(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "priceBookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		if err := svc.RemoveEntry(r.Context(), id, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
