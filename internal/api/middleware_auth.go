package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

type unlockClaims struct {
	jwt.RegisteredClaims
}

// LockRequired guards journal routes behind the optional owner PIN. When
// no PIN is configured the journal is open and the middleware passes
// through.
func (handler *Handler) LockRequired(c *fiber.Ctx) error {
	_, configured, err := handler.preferences.Get(services.AccessPINHashKey)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load lock state")
	}
	if !configured {
		return c.Next()
	}

	rawToken := strings.TrimSpace(c.Cookies(authCookieName))
	if rawToken == "" {
		return apiError(c, fiber.StatusUnauthorized, "locked")
	}

	claims := &unlockClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return apiError(c, fiber.StatusUnauthorized, "locked")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return apiError(c, fiber.StatusUnauthorized, "locked")
	}

	return c.Next()
}

func (handler *Handler) buildUnlockToken(ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = authTokenTTL
	}
	now := time.Now()

	claims := unlockClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) setUnlockCookie(c *fiber.Ctx) error {
	token, err := handler.buildUnlockToken(authTokenTTL)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(authTokenTTL),
	})
	return nil
}
