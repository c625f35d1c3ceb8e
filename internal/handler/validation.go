package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/membership"
)

// NewValidator returns a validator with the member field rules registered:
// "ethdate" for Ethiopian YYYY-MM-DD dates and "duration" for membership plans.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ethdate", func(fl validator.FieldLevel) bool {
		_, err := ethiopian.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := membership.ParsePlan(fl.Field().String())
		return err == nil
	})
	return v
}

// validationMessage flattens validator errors into one readable line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "ethdate":
			msgs = append(msgs, fmt.Sprintf("%s must be an Ethiopian date YYYY-MM-DD", fe.Field()))
		case "duration":
			msgs = append(msgs, fmt.Sprintf("%s must look like \"1 Month\", \"2 Weeks\", \"30 Days\" or \"1 Year\"", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// respondError maps domain errors to HTTP statuses; anything unknown goes to the app
// error handler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Member Not Found",
		})
	case errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrUnsupportedYear),
		errors.Is(err, domain.ErrUnrecognizedDurationFormat):
		return badRequest(c, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	default:
		return err
	}
}
