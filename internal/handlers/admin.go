package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// AdminHandler exposes the administrative surface: users, items, custodian
// management, requests, and platform stats.
type AdminHandler struct {
	users      *services.UserService
	items      *services.ItemService
	custodians *services.CustodianService
	requests   *services.RequestService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(
	users *services.UserService,
	items *services.ItemService,
	custodians *services.CustodianService,
	requests *services.RequestService,
) *AdminHandler {
	return &AdminHandler{users: users, items: items, custodians: custodians, requests: requests}
}

type custodianRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Location       string `json:"location" validate:"max=255"`
	Address        string `json:"address" validate:"max=255"`
	Phone          string `json:"phone" validate:"max=32"`
	Email          string `json:"email" validate:"omitempty,email"`
	OperatingHours string `json:"operating_hours" validate:"max=255"`
}

// Users lists every profile.
func (h *AdminHandler) Users(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	users, total, err := h.users.AdminList(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  int(total),
	})
}

// DeleteUser removes a non-admin account.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.users.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Items lists every item including inactive ones.
func (h *AdminHandler) Items(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	items, total, err := h.items.AdminList(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  int(total),
	})
}

// PurgeItem hard-deletes an inactive item and its dependent rows.
func (h *AdminHandler) PurgeItem(c *gin.Context) {
	if err := h.items.Purge(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purged": true})
}

// Stats returns platform counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// CreateCustodian registers a custodian location.
func (h *AdminHandler) CreateCustodian(c *gin.Context) {
	payload, err := bindAndValidate[custodianRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	custodian, err := h.custodians.Create(c.Request.Context(), services.CustodianInput{
		Name:           payload.Name,
		Location:       payload.Location,
		Address:        payload.Address,
		Phone:          payload.Phone,
		Email:          payload.Email,
		OperatingHours: payload.OperatingHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, custodian)
}

// UpdateCustodian replaces a custodian's editable fields.
func (h *AdminHandler) UpdateCustodian(c *gin.Context) {
	payload, err := bindAndValidate[custodianRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	custodian, err := h.custodians.Update(c.Request.Context(), c.Param("id"), services.CustodianInput{
		Name:           payload.Name,
		Location:       payload.Location,
		Address:        payload.Address,
		Phone:          payload.Phone,
		Email:          payload.Email,
		OperatingHours: payload.OperatingHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, custodian)
}

// DeleteCustodian hides a custodian from listings and new requests.
func (h *AdminHandler) DeleteCustodian(c *gin.Context) {
	if err := h.custodians.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Dropoffs lists dropoff requests, optionally filtered by status.
func (h *AdminHandler) Dropoffs(c *gin.Context) {
	rows, err := h.requests.AdminListDropoffs(c.Request.Context(), models.RequestStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// Pickups lists pickup requests, optionally filtered by status.
func (h *AdminHandler) Pickups(c *gin.Context) {
	rows, err := h.requests.AdminListPickups(c.Request.Context(), models.RequestStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}
