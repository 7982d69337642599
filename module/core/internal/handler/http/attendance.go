package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/hr-checkin/module/core/domain"
)

type attendanceService interface {
	CheckIn(ctx context.Context, employeeID, deviceID string, workLocation domain.WorkLocation) (domain.ValidationResult, *domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, employeeID, deviceID string, workLocation domain.WorkLocation) (domain.ValidationResult, *domain.AttendanceRecord, error)
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.AttendanceRecord, error)
}

type locationService interface {
	Validate(ctx context.Context, deviceID string, workLocation domain.WorkLocation) domain.ValidationResult
}

type permissionService interface {
	QueryPermission(ctx context.Context, deviceID string) domain.PermissionState
}

type geofenceService interface {
	Geofence() domain.GeofenceConfig
}

type attendanceRequest struct {
	DeviceID     string `json:"device_id" binding:"required"`
	WorkLocation string `json:"work_location" binding:"required,oneof=office remote"`
}

type attendanceResponse struct {
	Result domain.ValidationResult  `json:"result"`
	Record *domain.AttendanceRecord `json:"record,omitempty"`
}

type AttendanceHandler struct {
	attendanceSvc attendanceService
	locationSvc   locationService
	permissionSvc permissionService
	geofenceSvc   geofenceService
}

func NewAttendanceHandler(attendanceSvc attendanceService, locationSvc locationService, permissionSvc permissionService, geofenceSvc geofenceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceSvc: attendanceSvc,
		locationSvc:   locationSvc,
		permissionSvc: permissionSvc,
		geofenceSvc:   geofenceSvc,
	}
}

func (h *AttendanceHandler) Register(r *gin.RouterGroup) {
	r.POST("/attendance/check-in", h.CheckIn)
	r.POST("/attendance/check-out", h.CheckOut)
	r.GET("/attendance/history", h.GetHistory)
	r.POST("/location/validate", h.ValidateLocation)
	r.GET("/devices/:device_id/permission", h.GetPermission)
	r.GET("/geofence", h.GetGeofence)
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	h.record(c, h.attendanceSvc.CheckIn)
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	h.record(c, h.attendanceSvc.CheckOut)
}

type recordFunc func(ctx context.Context, employeeID, deviceID string, workLocation domain.WorkLocation) (domain.ValidationResult, *domain.AttendanceRecord, error)

func (h *AttendanceHandler) record(c *gin.Context, fn recordFunc) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, rec, err := fn(c.Request.Context(), employeeID(c), req.DeviceID, domain.WorkLocation(req.WorkLocation))
	switch {
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "already checked in"})
		return
	case errors.Is(err, domain.ErrNotCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "not checked in"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record attendance"})
		return
	}

	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, attendanceResponse{Result: result})
		return
	}
	c.JSON(http.StatusOK, attendanceResponse{Result: result, Record: rec})
}

func (h *AttendanceHandler) ValidateLocation(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.locationSvc.Validate(c.Request.Context(), req.DeviceID, domain.WorkLocation(req.WorkLocation)))
}

func (h *AttendanceHandler) GetPermission(c *gin.Context) {
	state := h.permissionSvc.QueryPermission(c.Request.Context(), c.Param("device_id"))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *AttendanceHandler) GetGeofence(c *gin.Context) {
	c.JSON(http.StatusOK, h.geofenceSvc.Geofence())
}

func (h *AttendanceHandler) GetHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	records, err := h.attendanceSvc.History(c.Request.Context(), &domain.HistoryQuery{
		EmployeeID: employeeID(c),
		Start:      time.Unix(start, 0),
		End:        time.Unix(end, 0),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}
