package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
	"github.com/noah-isme/campus-cms-api/pkg/response"
)

type attendanceServiceMock struct {
	resp *dto.MarkAttendanceResponse
	err  error
	ip   string
}

func (m *attendanceServiceMock) Mark(ctx context.Context, req dto.MarkAttendanceRequest, originIP string) (*dto.MarkAttendanceResponse, error) {
	m.ip = originIP
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func newMarkContext(t *testing.T, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/makeup/attendance", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	c.Request = req
	return c, w
}

func TestAttendanceHandlerMarkSuccess(t *testing.T) {
	svc := &attendanceServiceMock{resp: &dto.MarkAttendanceResponse{SessionID: "s1", CourseCode: "CSE101"}}
	handler := NewAttendanceHandler(svc)

	c, w := newMarkContext(t, dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"})
	handler.Mark(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "203.0.113.7", svc.ip)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestAttendanceHandlerMarkErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{appErrors.ErrCodeMalformed, http.StatusBadRequest, "CODE_MALFORMED"},
		{appErrors.ErrCodeInvalid, http.StatusNotFound, "CODE_INVALID"},
		{appErrors.ErrCodeNotActive, http.StatusConflict, "CODE_NOT_ACTIVE"},
		{appErrors.ErrCodeExpired, http.StatusGone, "CODE_EXPIRED"},
		{appErrors.ErrNotEnrolled, http.StatusForbidden, "NOT_ENROLLED"},
		{appErrors.ErrAlreadyMarked, http.StatusConflict, "ALREADY_MARKED"},
	}
	for _, tc := range cases {
		handler := NewAttendanceHandler(&attendanceServiceMock{err: tc.err})
		c, w := newMarkContext(t, dto.MarkAttendanceRequest{Code: "A3X7K2", StudentID: "st1"})
		handler.Mark(c)

		require.Equal(t, tc.status, w.Code, tc.code)
		var envelope response.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.NotNil(t, envelope.Error, tc.code)
		assert.Equal(t, tc.code, envelope.Error.Code)
	}
}

func TestAttendanceHandlerMarkInvalidBody(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/makeup/attendance", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Mark(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
