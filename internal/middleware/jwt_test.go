package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/utils"
)

const testSecret = "unit-test-secret"

func doAuthRequest(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uint64, string) {
	t.Helper()
	e := echo.New()

	var gotID uint64
	var gotEmail string
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		gotID = UserID(c)
		gotEmail = UserEmail(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, gotID, gotEmail
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "seven@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	rec, uid, email := doAuthRequest(t, "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if uid != 7 {
		t.Errorf("UserID = %d, want 7", uid)
	}
	if email != "seven@example.com" {
		t.Errorf("UserEmail = %q", email)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _, _ := doAuthRequest(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, "seven@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, uid, _ := doAuthRequest(t, "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if uid != 0 {
		t.Errorf("UserID leaked through: %d", uid)
	}
}

func TestJWTAuthRejectsGarbage(t *testing.T) {
	rec, _, _ := doAuthRequest(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUserIDDefaultsToZero(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if UserID(c) != 0 {
		t.Error("UserID nonzero on an unauthenticated context")
	}
	if UserEmail(c) != "" {
		t.Error("UserEmail nonempty on an unauthenticated context")
	}
}
