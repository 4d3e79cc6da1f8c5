package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sellerdeskhq/sellerdesk-backend/api/responses"
	"github.com/sellerdeskhq/sellerdesk-backend/api/validators"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/inventory"
	"github.com/sellerdeskhq/sellerdesk-backend/internal/ledger"
	pkgerrors "github.com/sellerdeskhq/sellerdesk-backend/pkg/errors"
	"github.com/sellerdeskhq/sellerdesk-backend/pkg/logger"
)

type stockRequest struct {
	SKU         string    `json:"sku" validate:"required,min=1,max=64"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Qty         int       `json:"qty" validate:"required,gt=0"`
}

func InventoryReceive(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Receive(r.Context(), inventory.ReceiveInput{
			SKU:         req.SKU,
			WarehouseID: req.WarehouseID,
			Qty:         req.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func InventoryReserve(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handle, err := svc.Reserve(r.Context(), inventory.ReserveInput{
			SKU:         req.SKU,
			WarehouseID: req.WarehouseID,
			Qty:         req.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, handle)
	}
}

func InventoryRelease(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Release(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

func InventoryFulfill(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Fulfill(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "fulfilled"})
	}
}

func InventoryStatus(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, warehouseID, err := rowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Status(r.Context(), sku, warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func InventoryLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LowStockItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type reorderPointRequest struct {
	SKU          string    `json:"sku" validate:"required,min=1,max=64"`
	WarehouseID  uuid.UUID `json:"warehouse_id" validate:"required"`
	ReorderPoint *int      `json:"reorder_point" validate:"omitempty,gte=0"`
}

func InventorySetReorderPoint(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderPointRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.SetReorderPoint(r.Context(), inventory.ReorderPointInput{
			SKU:          req.SKU,
			WarehouseID:  req.WarehouseID,
			ReorderPoint: req.ReorderPoint,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func InventoryMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, warehouseID, err := rowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.History(r.Context(), sku, warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movements)
	}
}

// InventoryDeleteItem removes a drained row. Rows that still hold stock or
// reservations are rejected by the service.
func InventoryDeleteItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, warehouseID, err := rowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), sku, warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func rowFromQuery(r *http.Request) (string, uuid.UUID, error) {
	sku := r.URL.Query().Get("sku")
	if sku == "" {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sku query parameter is required")
	}
	warehouseID, err := uuid.Parse(r.URL.Query().Get("warehouse_id"))
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse_id query parameter")
	}
	return sku, warehouseID, nil
}
