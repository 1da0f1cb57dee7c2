// Package httpapi exposes the REST API over gorilla/mux.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/brickoven/pos/internal/app"
	"github.com/brickoven/pos/internal/app/domain/driver"
	"github.com/brickoven/pos/internal/app/domain/menu"
	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
	"github.com/brickoven/pos/internal/app/services/layout"
	ordersvc "github.com/brickoven/pos/internal/app/services/orders"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewRouter returns a mux exposing the core REST API. Middleware and the
// metrics endpoint are mounted by the caller.
func NewRouter(application *app.Application) *mux.Router {
	h := &handler{app: application}
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/geocode", h.geocode).Methods(http.MethodGet)

	api.HandleFunc("/store", h.getStore).Methods(http.MethodGet)
	api.HandleFunc("/store", h.putStore).Methods(http.MethodPut)

	api.HandleFunc("/menu/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/menu/categories", h.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/menu/categories/{id:[0-9]+}", h.getCategory).Methods(http.MethodGet)
	api.HandleFunc("/menu/categories/{id:[0-9]+}", h.patchCategory).Methods(http.MethodPatch)
	api.HandleFunc("/menu/categories/{id:[0-9]+}", h.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/menu/items", h.listItems).Methods(http.MethodGet)
	api.HandleFunc("/menu/items", h.createItem).Methods(http.MethodPost)
	api.HandleFunc("/menu/items/{id:[0-9]+}", h.getItem).Methods(http.MethodGet)
	api.HandleFunc("/menu/items/{id:[0-9]+}", h.patchItem).Methods(http.MethodPatch)
	api.HandleFunc("/menu/items/{id:[0-9]+}", h.deleteItem).Methods(http.MethodDelete)

	api.HandleFunc("/panels", h.listPanels).Methods(http.MethodGet)
	api.HandleFunc("/panels", h.createPanel).Methods(http.MethodPost)
	api.HandleFunc("/panels/{id:[0-9]+}", h.getPanel).Methods(http.MethodGet)
	api.HandleFunc("/panels/{id:[0-9]+}", h.patchPanel).Methods(http.MethodPatch)
	api.HandleFunc("/panels/{id:[0-9]+}", h.deletePanel).Methods(http.MethodDelete)
	api.HandleFunc("/panels/{panelID:[0-9]+}/slots", h.getPanelSlots).Methods(http.MethodGet)
	api.HandleFunc("/panels/{panelID:[0-9]+}/slots", h.putPanelSlots).Methods(http.MethodPut)

	api.HandleFunc("/modifier-groups", h.listModifierGroups).Methods(http.MethodGet)
	api.HandleFunc("/modifier-groups", h.createModifierGroup).Methods(http.MethodPost)
	api.HandleFunc("/modifier-groups/{id:[0-9]+}", h.getModifierGroup).Methods(http.MethodGet)
	api.HandleFunc("/modifier-groups/{id:[0-9]+}", h.patchModifierGroup).Methods(http.MethodPatch)
	api.HandleFunc("/modifier-groups/{id:[0-9]+}", h.deleteModifierGroup).Methods(http.MethodDelete)
	api.HandleFunc("/modifier-groups/{id:[0-9]+}/modifiers", h.listModifiers).Methods(http.MethodGet)
	api.HandleFunc("/modifier-groups/{id:[0-9]+}/modifiers", h.createModifier).Methods(http.MethodPost)
	api.HandleFunc("/modifiers/{id:[0-9]+}", h.patchModifier).Methods(http.MethodPatch)
	api.HandleFunc("/modifiers/{id:[0-9]+}", h.deleteModifier).Methods(http.MethodDelete)

	api.HandleFunc("/drivers", h.listDrivers).Methods(http.MethodGet)
	api.HandleFunc("/drivers", h.createDriver).Methods(http.MethodPost)
	api.HandleFunc("/drivers/{id:[0-9]+}", h.getDriver).Methods(http.MethodGet)
	api.HandleFunc("/drivers/{id:[0-9]+}", h.patchDriver).Methods(http.MethodPatch)
	api.HandleFunc("/drivers/{id:[0-9]+}", h.deleteDriver).Methods(http.MethodDelete)
	api.HandleFunc("/drivers/{id:[0-9]+}/clock-in", h.clockIn).Methods(http.MethodPost)
	api.HandleFunc("/drivers/{id:[0-9]+}/clock-out", h.clockOut).Methods(http.MethodPost)

	api.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/status", h.orderStatus).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/assign-driver", h.assignDriver).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/receipt", h.orderReceipt).Methods(http.MethodGet)

	api.HandleFunc("/reports/settlement", h.settlementReport).Methods(http.MethodGet)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Geocode ---

func (h *handler) geocode(w http.ResponseWriter, r *http.Request) {
	results, err := h.app.Geocode.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// --- Store settings ---

func (h *handler) getStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.StoreInfo.Location(r.Context()))
}

func (h *handler) putStore(w http.ResponseWriter, r *http.Request) {
	var loc store.Location
	if err := decodeJSON(r.Body, &loc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.StoreInfo.Update(r.Context(), loc)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- Menu categories ---

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.app.Menu.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		SortOrder int    `json:"sort_order"`
		Active    *bool  `json:"active"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cat := menu.Category{Name: payload.Name, SortOrder: payload.SortOrder, Active: true}
	if payload.Active != nil {
		cat.Active = *payload.Active
	}
	created, err := h.app.Menu.CreateCategory(r.Context(), cat)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.app.Menu.GetCategory(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *handler) patchCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.app.Menu.GetCategory(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
		Active    *bool   `json:"active"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Name != nil {
		cat.Name = *payload.Name
	}
	if payload.SortOrder != nil {
		cat.SortOrder = *payload.SortOrder
	}
	if payload.Active != nil {
		cat.Active = *payload.Active
	}
	updated, err := h.app.Menu.UpdateCategory(r.Context(), cat)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Menu.DeleteCategory)
}

// --- Menu items ---

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := h.app.Menu.ListItems(r.Context(), categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CategoryID int64  `json:"category_id"`
		Name       string `json:"name"`
		PrintName  string `json:"print_name"`
		PriceCents int64  `json:"price_cents"`
		Active     *bool  `json:"active"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item := menu.Item{
		CategoryID: payload.CategoryID,
		Name:       payload.Name,
		PrintName:  payload.PrintName,
		PriceCents: payload.PriceCents,
		Active:     true,
	}
	if payload.Active != nil {
		item.Active = *payload.Active
	}
	created, err := h.app.Menu.CreateItem(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.app.Menu.GetItem(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *handler) patchItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.app.Menu.GetItem(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		CategoryID *int64  `json:"category_id"`
		Name       *string `json:"name"`
		PrintName  *string `json:"print_name"`
		PriceCents *int64  `json:"price_cents"`
		Active     *bool   `json:"active"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.CategoryID != nil {
		item.CategoryID = *payload.CategoryID
	}
	if payload.Name != nil {
		item.Name = *payload.Name
	}
	if payload.PrintName != nil {
		item.PrintName = *payload.PrintName
	}
	if payload.PriceCents != nil {
		item.PriceCents = *payload.PriceCents
	}
	if payload.Active != nil {
		item.Active = *payload.Active
	}
	updated, err := h.app.Menu.UpdateItem(r.Context(), item)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Menu.DeleteItem)
}

// --- Panels & slots ---

func (h *handler) listPanels(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	panels, err := h.app.Layout.ListPanels(r.Context(), categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, panels)
}

func (h *handler) createPanel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CategoryID int64  `json:"category_id"`
		Name       string `json:"name"`
		Rows       int    `json:"rows"`
		Cols       int    `json:"cols"`
		SortOrder  int    `json:"sort_order"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Layout.CreatePanel(r.Context(), menu.Panel{
		CategoryID: payload.CategoryID,
		Name:       payload.Name,
		Rows:       payload.Rows,
		Cols:       payload.Cols,
		SortOrder:  payload.SortOrder,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getPanel(w http.ResponseWriter, r *http.Request) {
	panel, err := h.app.Layout.GetPanel(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (h *handler) patchPanel(w http.ResponseWriter, r *http.Request) {
	panel, err := h.app.Layout.GetPanel(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		CategoryID *int64  `json:"category_id"`
		Name       *string `json:"name"`
		Rows       *int    `json:"rows"`
		Cols       *int    `json:"cols"`
		SortOrder  *int    `json:"sort_order"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.CategoryID != nil {
		panel.CategoryID = *payload.CategoryID
	}
	if payload.Name != nil {
		panel.Name = *payload.Name
	}
	if payload.Rows != nil {
		panel.Rows = *payload.Rows
	}
	if payload.Cols != nil {
		panel.Cols = *payload.Cols
	}
	if payload.SortOrder != nil {
		panel.SortOrder = *payload.SortOrder
	}
	updated, err := h.app.Layout.UpdatePanel(r.Context(), panel)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePanel(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Layout.DeletePanel)
}

func (h *handler) getPanelSlots(w http.ResponseWriter, r *http.Request) {
	panelID := pathID(r, "panelID")
	if _, err := h.app.Layout.GetPanel(r.Context(), panelID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	slots, err := h.app.Layout.PanelSlots(r.Context(), panelID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *handler) putPanelSlots(w http.ResponseWriter, r *http.Request) {
	panelID := pathID(r, "panelID")
	if _, err := h.app.Layout.GetPanel(r.Context(), panelID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Slots []layout.SlotInput `json:"slots"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Slots == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("slots array is required"))
		return
	}
	saved, err := h.app.Layout.ReplacePanelSlots(r.Context(), panelID, payload.Slots)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// --- Modifier groups & modifiers ---

func (h *handler) listModifierGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.app.Menu.ListModifierGroups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *handler) createModifierGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		MinSelect int    `json:"min_select"`
		MaxSelect int    `json:"max_select"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Menu.CreateModifierGroup(r.Context(), menu.ModifierGroup{
		Name:      payload.Name,
		MinSelect: payload.MinSelect,
		MaxSelect: payload.MaxSelect,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getModifierGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.app.Menu.GetModifierGroup(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *handler) patchModifierGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.app.Menu.GetModifierGroup(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Name      *string `json:"name"`
		MinSelect *int    `json:"min_select"`
		MaxSelect *int    `json:"max_select"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Name != nil {
		group.Name = *payload.Name
	}
	if payload.MinSelect != nil {
		group.MinSelect = *payload.MinSelect
	}
	if payload.MaxSelect != nil {
		group.MaxSelect = *payload.MaxSelect
	}
	updated, err := h.app.Menu.UpdateModifierGroup(r.Context(), group)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteModifierGroup(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Menu.DeleteModifierGroup)
}

func (h *handler) listModifiers(w http.ResponseWriter, r *http.Request) {
	groupID := pathID(r, "id")
	if _, err := h.app.Menu.GetModifierGroup(r.Context(), groupID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	mods, err := h.app.Menu.ListModifiers(r.Context(), groupID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, mods)
}

func (h *handler) createModifier(w http.ResponseWriter, r *http.Request) {
	groupID := pathID(r, "id")
	if _, err := h.app.Menu.GetModifierGroup(r.Context(), groupID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Name            string `json:"name"`
		PriceDeltaCents int64  `json:"price_delta_cents"`
		SortOrder       int    `json:"sort_order"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Menu.CreateModifier(r.Context(), menu.Modifier{
		GroupID:         groupID,
		Name:            payload.Name,
		PriceDeltaCents: payload.PriceDeltaCents,
		SortOrder:       payload.SortOrder,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) patchModifier(w http.ResponseWriter, r *http.Request) {
	mod, err := h.app.Menu.GetModifier(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Name            *string `json:"name"`
		PriceDeltaCents *int64  `json:"price_delta_cents"`
		SortOrder       *int    `json:"sort_order"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Name != nil {
		mod.Name = *payload.Name
	}
	if payload.PriceDeltaCents != nil {
		mod.PriceDeltaCents = *payload.PriceDeltaCents
	}
	if payload.SortOrder != nil {
		mod.SortOrder = *payload.SortOrder
	}
	updated, err := h.app.Menu.UpdateModifier(r.Context(), mod)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteModifier(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Menu.DeleteModifier)
}

// --- Drivers ---

func (h *handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	drvs, err := h.app.Drivers.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, drvs)
}

func (h *handler) createDriver(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Drivers.Create(r.Context(), driver.Driver{Name: payload.Name, Phone: payload.Phone})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getDriver(w http.ResponseWriter, r *http.Request) {
	drv, err := h.app.Drivers.Get(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, drv)
}

func (h *handler) patchDriver(w http.ResponseWriter, r *http.Request) {
	drv, err := h.app.Drivers.Get(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var payload struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Active *bool   `json:"active"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Name != nil {
		drv.Name = *payload.Name
	}
	if payload.Phone != nil {
		drv.Phone = *payload.Phone
	}
	if payload.Active != nil {
		drv.Active = *payload.Active
	}
	updated, err := h.app.Drivers.Update(r.Context(), drv)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteDriver(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.app.Drivers.Delete)
}

func (h *handler) clockIn(w http.ResponseWriter, r *http.Request) {
	h.driverTransition(w, r, h.app.Drivers.ClockIn)
}

func (h *handler) clockOut(w http.ResponseWriter, r *http.Request) {
	h.driverTransition(w, r, h.app.Drivers.ClockOut)
}

// --- Orders ---

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := order.Status(r.URL.Query().Get("status"))
	ords, err := h.app.Orders.List(r.Context(), date, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ords)
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload ordersvc.CreateInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Orders.Create(r.Context(), payload)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ord, err := h.app.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, ord)
}

func (h *handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Orders.Advance(r.Context(), mux.Vars(r)["id"], order.Status(payload.Status))
	if err != nil {
		status := serviceStatus(err)
		if errors.Is(err, ordersvc.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) assignDriver(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DriverID int64 `json:"driver_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Orders.AssignDriver(r.Context(), mux.Vars(r)["id"], payload.DriverID)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) orderReceipt(w http.ResponseWriter, r *http.Request) {
	loc := h.app.StoreInfo.Location(r.Context())
	receipt, err := h.app.Orders.Receipt(r.Context(), mux.Vars(r)["id"], loc)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// --- Settlement ---

func (h *handler) settlementReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("date query parameter is required"))
		return
	}
	report, err := h.app.Settlement.Report(r.Context(), date)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- Helpers ---

func (h *handler) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	if err := del(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) driverTransition(w http.ResponseWriter, r *http.Request, move func(ctx context.Context, id int64) (driver.Driver, error)) {
	drv, err := move(r.Context(), pathID(r, "id"))
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, drv)
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return id, nil
}

// serviceStatus maps service errors onto HTTP codes: missing rows are 404,
// validation failures are 400, anything else is a 500.
func serviceStatus(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows), strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrInvalidLayout):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "required"),
		strings.Contains(err.Error(), "must"),
		strings.Contains(err.Error(), "unknown"),
		strings.Contains(err.Error(), "not active"),
		strings.Contains(err.Error(), "already"),
		strings.Contains(err.Error(), "expected"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
