// handlers/errors.go
package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"prediction-pool/services"
	"prediction-pool/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// statusFor maps a rejection code onto an HTTP status.
func statusFor(err *services.PoolError) int {
	switch err.Code {
	case services.ReasonValidation, services.ReasonHasPredictions, services.ReasonInvalidTransition:
		return fiber.StatusBadRequest
	case services.ReasonUnauthorized:
		if errors.Is(err, services.ErrAdminRequired) {
			return fiber.StatusForbidden
		}
		return fiber.StatusUnauthorized
	case services.ReasonNotFound:
		return fiber.StatusNotFound
	case services.ReasonWrongStatus, services.ReasonWindowClosed, services.ReasonAlreadyScored,
		services.ReasonLocked, services.ReasonWindowOpen:
		return fiber.StatusForbidden
	case services.ReasonConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error","code"}. Anything that is not a rejection is logged and hidden.
func respondError(c *fiber.Ctx, err error) error {
	var pe *services.PoolError
	if errors.As(err, &pe) {
		return c.Status(statusFor(pe)).JSON(fiber.Map{
			"error": pe.Message,
			"code":  pe.Code,
		})
	}

	utils.Log.WithError(err).WithField("path", c.Path()).Error("❌ Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"code":  "INTERNAL_ERROR",
	})
}

// bindJSON parses and validates a request body.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return services.ValidationError("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return services.ValidationError("%s", describeFieldError(verrs[0]))
		}
		return services.ValidationError("invalid request body")
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
