package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// CustodianHandler exposes the custodian registry and the dropoff and pickup
// request flows.
type CustodianHandler struct {
	custodians *services.CustodianService
	requests   *services.RequestService
}

// NewCustodianHandler constructs a CustodianHandler.
func NewCustodianHandler(custodians *services.CustodianService, requests *services.RequestService) *CustodianHandler {
	return &CustodianHandler{custodians: custodians, requests: requests}
}

type createRequestRequest struct {
	ItemID      string `json:"item_id" validate:"required,uuid"`
	CustodianID string `json:"custodian_id" validate:"required,uuid"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type updateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved completed rejected"`
}

// List returns active custodian locations.
func (h *CustodianHandler) List(c *gin.Context) {
	custodians, err := h.custodians.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, custodians)
}

// Get returns one custodian location.
func (h *CustodianHandler) Get(c *gin.Context) {
	custodian, err := h.custodians.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, custodian)
}

// CreateDropoff opens a dropoff request for the caller as finder.
func (h *CustodianHandler) CreateDropoff(c *gin.Context) {
	payload, err := bindAndValidate[createRequestRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	request, err := h.requests.CreateDropoff(c.Request.Context(), services.CreateDropoffInput{
		FinderID:    currentUserID(c),
		ItemID:      payload.ItemID,
		CustodianID: payload.CustodianID,
		Notes:       payload.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// CreatePickup opens a pickup request for the caller as owner. The response
// includes the minted verification code.
func (h *CustodianHandler) CreatePickup(c *gin.Context) {
	payload, err := bindAndValidate[createRequestRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	request, err := h.requests.CreatePickup(c.Request.Context(), services.CreatePickupInput{
		OwnerID:     currentUserID(c),
		ItemID:      payload.ItemID,
		CustodianID: payload.CustodianID,
		Notes:       payload.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// MyDropoffs lists the caller's dropoff requests.
func (h *CustodianHandler) MyDropoffs(c *gin.Context) {
	rows, err := h.requests.ListDropoffsForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// MyPickups lists the caller's pickup requests, verification codes included.
func (h *CustodianHandler) MyPickups(c *gin.Context) {
	rows, err := h.requests.ListPickupsForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// UpdateDropoffStatus transitions a dropoff request. Admin only.
func (h *CustodianHandler) UpdateDropoffStatus(c *gin.Context) {
	payload, err := bindAndValidate[updateRequestStatusRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	request, err := h.requests.UpdateDropoffStatus(c.Request.Context(), c.Param("id"), models.RequestStatus(payload.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// UpdatePickupStatus transitions a pickup request. Admin only.
func (h *CustodianHandler) UpdatePickupStatus(c *gin.Context) {
	payload, err := bindAndValidate[updateRequestStatusRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	request, err := h.requests.UpdatePickupStatus(c.Request.Context(), c.Param("id"), models.RequestStatus(payload.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}
