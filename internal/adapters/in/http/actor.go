package http

import (
	"net/http"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Identity is asserted by the gateway in front of the service.
const (
	HeaderActorID          = "X-Actor-Id"
	HeaderActorPermissions = "X-Actor-Permissions"

	anonymousActorID = "anonymous"
	actorContextKey  = "actor"
)

func resolveActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
		// The system actor is internal; a caller cannot claim it.
		if id == "" || id == kernel.SystemActor().ID() {
			id = anonymousActorID
		}

		var permissions []kernel.Permission
		for _, p := range strings.Split(c.Request().Header.Get(HeaderActorPermissions), ",") {
			if p = strings.TrimSpace(p); p != "" {
				permissions = append(permissions, kernel.Permission(p))
			}
		}

		c.Set(actorContextKey, kernel.NewActor(id, permissions...))
		return next(c)
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	if a, ok := c.Get(actorContextKey).(kernel.Actor); ok {
		return a
	}
	return kernel.NewActor(anonymousActorID)
}

func requirePermission(p kernel.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !actorFrom(c).HasPermission(p) {
				err := errs.NewPermissionDeniedError(string(p))
				return c.JSON(http.StatusForbidden, newErrorBody(http.StatusForbidden, err))
			}
			return next(c)
		}
	}
}
