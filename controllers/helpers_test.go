package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/services"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", services.ValidationErrors{{Field: "title", Rule: "required", Message: "x"}}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", services.ValidationErrors{{Field: "a", Rule: "b"}}), http.StatusBadRequest},
		{"not accessible", services.ErrSurveyNotAccessible, http.StatusForbidden},
		{"question not found", services.ErrQuestionNotFound, http.StatusNotFound},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"username taken", services.ErrUsernameTaken, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tt.err)
			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestQueryID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query  string
		wantID uint
		wantOK bool
	}{
		{"", 0, true},
		{"survey=7", 7, true},
		{"survey=abc", 0, false},
		{"survey=-1", 0, false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		id, ok := queryID(c, "survey")
		if id != tt.wantID || ok != tt.wantOK {
			t.Fatalf("%q: got (%d, %v), want (%d, %v)", tt.query, id, ok, tt.wantID, tt.wantOK)
		}
		if !ok && w.Code != http.StatusBadRequest {
			t.Fatalf("%q: got %d, want 400", tt.query, w.Code)
		}
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/surveys/new":         "/surveys/new",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"https://evil.example": "/",
		"/profile?tab=1":       "/profile?tab=1",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
