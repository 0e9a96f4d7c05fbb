package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

type googleSignInReq struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GoogleSignIn: verify a Google ID token and sign the user in,
// creating or linking the account as needed. Disabled (404) unless a
// client id is configured.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	if h.Cfg.GoogleClientID == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "google sign-in not enabled"})
	}

	var req googleSignInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{h.Cfg.GoogleClientID}); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google id token"})
	}
	claims, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google id token"})
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" || claims.Sub == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google id token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.googleUser(ctx, email, claims.GivenName, claims.FamilyName, claims.Sub)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign-in failed"})
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// googleUser resolves a verified Google identity to a local user:
// match on google_id first, then link by email, then create.
func (h *AuthHandler) googleUser(ctx context.Context, email, firstName, lastName, googleID string) (model.User, error) {
	if u, err := h.Users.GetByGoogleID(ctx, googleID); err == nil {
		return u, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	if u, err := h.Users.GetByEmail(ctx, email); err == nil {
		if err := h.Users.LinkGoogleID(ctx, u.ID, googleID); err != nil {
			return model.User{}, err
		}
		u.GoogleID = googleID
		return u, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	uid, err := h.Users.CreateFromGoogle(ctx, email, firstName, lastName, googleID)
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: uid, Email: email, FirstName: firstName, LastName: lastName, GoogleID: googleID}, nil
}
