package product

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shop-api/internal/db"
)

type Handler struct {
	service *Service
	log     *logrus.Logger
}

func NewHandler(database *sql.DB, log *logrus.Logger) *Handler {
	return &Handler{
		service: NewService(database),
		log:     log,
	}
}

// List godoc
// @Summary		List products
// @Tags			products
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}	db.Product	"All products"
// @Failure		401	{object}	string	"Missing or invalid token"
// @Router			/Product [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("listing products")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// Get godoc
// @Summary		Get a product by id
// @Tags			products
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"Product ID"
// @Success		200	{object}	db.Product	"Product found"
// @Failure		400	{object}	string	"Invalid product id"
// @Failure		404	{object}	string	"Product not found"
// @Router			/Product/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.log.WithError(err).Error("finding product")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// Create godoc
// @Summary		Create a product
// @Tags			products
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			product	body		db.Product	true	"Product to create"
// @Success		201		{object}	db.Product	"Created product, Location header set"
// @Failure		400		{object}	string	"Invalid request"
// @Router			/Product/addproduct [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p db.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.service.Create(r.Context(), &p); err != nil {
		h.log.WithError(err).Error("creating product")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/Product/%d", p.ID))
	h.writeJSON(w, http.StatusCreated, p)
}

// Update godoc
// @Summary		Replace a product
// @Description	Full replacement of an existing product; the submitted rowVersion must match the stored one
// @Tags			products
// @Accept			json
// @Security		BearerAuth
// @Param			product	body	db.Product	true	"Product with assigned id"
// @Success		204		"Product replaced"
// @Failure		400		{object}	string	"Invalid request or unassigned id"
// @Failure		404		{object}	string	"Product no longer exists"
// @Failure		409		{object}	string	"Stale rowVersion"
// @Router			/Product [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p db.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if p.ID == 0 {
		h.writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	err := h.service.Update(r.Context(), &p)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrVersionConflict):
		h.writeError(w, http.StatusConflict, "concurrency conflict")
	default:
		h.log.WithError(err).Error("updating product")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Delete godoc
// @Summary		Delete a product
// @Tags			products
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"Product ID"
// @Success		200	{object}	db.Product	"Deleted product"
// @Failure		400	{object}	string	"Invalid product id"
// @Failure		404	{object}	string	"Product not found"
// @Router			/Product/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("deleting product")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// Helpers

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, message)
}
