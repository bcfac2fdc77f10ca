package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core/user"
)

// adminMiddleware lets admins through; roles further restrict which admins.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && hasAnyRole(claims.Roles, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware lets admins & the staff holding one of roles through.
func staffMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || (len(roles) > 0 && hasAnyRole(claims.Roles, roles)) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// readWrite returns the middleware of the read & write routes of a resource:
// readers may only GET, writers may do anything.
func readWrite(readers, writers []string) (read, write echo.MiddlewareFunc) {
	return staffMiddleware(append(append([]string{}, readers...), writers...)...), staffMiddleware(writers...)
}

func hasAnyRole(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

var (
	kitchenRoles    = []string{user.RoleKitchen}
	nurseRoles      = []string{user.RoleNurse}
	accountantRoles = []string{user.RoleAccountant}
	teacherRoles    = []string{user.RoleTeacher}
)
