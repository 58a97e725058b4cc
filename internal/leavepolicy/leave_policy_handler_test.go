package leavepolicy_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	leavepolicyerrors "github.com/zepolnala/leave-management-system/internal/leavepolicy/errors"
	leavepolicyMock "github.com/zepolnala/leave-management-system/internal/leavepolicy/mock"
	"go.uber.org/mock/gomock"
)

func newRouter(handler *leavepolicy.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	leavepolicy.RegisterRoutes(r.Group("/api/v1"), handler)
	return r
}

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := leavepolicyMock.NewMockService(ctrl)
	r := newRouter(leavepolicy.NewHandler(mockService))

	t.Run("Success", func(t *testing.T) {
		mockService.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req leavepolicy.CreateLeavePolicyRequest) (leavepolicy.LeavePolicyResponse, error) {
				assert.Equal(t, uint64(1), req.OrganizationID)
				assert.Equal(t, 0, *req.MaxDays)
				return leavepolicy.LeavePolicyResponse{ID: 3, LeaveType: "unpaid"}, nil
			})

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/leave-policies",
			bytes.NewBufferString(`{"organization_id":1,"leave_type":"unpaid","max_days":0}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Negative max days", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/leave-policies",
			bytes.NewBufferString(`{"organization_id":1,"leave_type":"sick","max_days":-2}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing max days", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/leave-policies",
			bytes.NewBufferString(`{"organization_id":1,"leave_type":"sick"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := leavepolicyMock.NewMockService(ctrl)
	r := newRouter(leavepolicy.NewHandler(mockService))

	mockService.EXPECT().GetAll(gomock.Any(), uint64(0)).Return([]leavepolicy.LeavePolicyResponse{}, nil)
	mockService.EXPECT().GetAll(gomock.Any(), uint64(5)).Return([]leavepolicy.LeavePolicyResponse{{ID: 1}}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/leave-policies", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/leave-policies?organization_id=5", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GetByIDAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := leavepolicyMock.NewMockService(ctrl)
	r := newRouter(leavepolicy.NewHandler(mockService))

	mockService.EXPECT().GetByID(gomock.Any(), uint64(9)).Return(leavepolicy.LeavePolicyResponse{}, leavepolicyerrors.ErrLeavePolicyNotFound)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/leave-policies/9", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.EXPECT().Delete(gomock.Any(), uint64(9)).Return(leavepolicyerrors.ErrLeavePolicyNotFound)
	req, _ = http.NewRequest(http.MethodDelete, "/api/v1/leave-policies/9", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/leave-policies/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
