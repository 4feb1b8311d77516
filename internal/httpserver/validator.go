package httpserver

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

func NewValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
