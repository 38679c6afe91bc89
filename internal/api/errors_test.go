package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/service"
)

func TestRespondWithErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{&service.Error{Code: service.CodeValidation}, http.StatusBadRequest},
		{&service.Error{Code: service.CodeInvalidArgument}, http.StatusBadRequest},
		{&service.Error{Code: service.CodeAccessDenied}, http.StatusForbidden},
		{&service.Error{Code: service.CodeInvalidCredentials}, http.StatusUnauthorized},
		{&service.Error{Code: service.CodeEmailTaken}, http.StatusConflict},
		{&service.Error{Code: service.CodeNotFound}, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondWithError(c, tc.err)
		c.Writer.WriteHeaderNow()
		if rec.Code != tc.status {
			t.Fatalf("respondWithError(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestPaginationParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := Pagination{DefaultSize: 20, MaxSize: 100}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2&size=1000", nil)
	req, ok := p.parse(c)
	if !ok || req.Page != 2 || req.Size != 100 {
		t.Fatalf("unexpected page request: %#v, %v", req, ok)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	req, ok = p.parse(c)
	if !ok || req.Page != 0 || req.Size != 20 {
		t.Fatalf("unexpected defaults: %#v, %v", req, ok)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?size=zero", nil)
	if _, ok := p.parse(c); ok {
		t.Fatal("expected invalid size to be rejected")
	}
}

func TestOpenAPIPath(t *testing.T) {
	if got := openAPIPath("/comments/task/:taskId"); got != "/comments/task/{taskId}" {
		t.Fatalf("openAPIPath = %s", got)
	}
	if got := operationID("github.com/Benhap1/taskmanager/internal/api.CreateTaskHandler.func1"); got != "CreateTaskHandler" {
		t.Fatalf("operationID = %s", got)
	}
}
