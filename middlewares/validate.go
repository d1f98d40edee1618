package middlewares

import (
	"time"

	"doulaops-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validate carries the domain rules the DTOs use on top of the builtin tags:
// "ymd" accepts a date-only string such as a client's due date.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	return v
}

// BindAndValidate parses the request body into dst, normalizes it per the
// DTO's `normalize` tags, then validates. Parse errors surface as a 400;
// rule violations surface as validator.ValidationErrors for the error
// handler to turn into a 422.
func BindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(dst)
	return validate.Struct(dst)
}
