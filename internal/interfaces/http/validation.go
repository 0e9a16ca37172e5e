package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tagName := range []string{"json", "query"} {
			tag := strings.SplitN(f.Tag.Get(tagName), ",", 2)[0]
			if tag != "" && tag != "-" {
				return tag
			}
		}
		return f.Name
	})
	return v
}

// bindBody parsea el cuerpo JSON y valida dest. Responde 400 y devuelve false si falla.
func bindBody(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(dest); err != nil {
		return false, badRequest(c, "VALIDATION", validationMessage(err))
	}
	return true, nil
}

// bindQuery parsea y valida los query params.
func bindQuery(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.QueryParser(dest); err != nil {
		return false, badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if err := validate.Struct(dest); err != nil {
		return false, badRequest(c, "VALIDATION", validationMessage(err))
	}
	return true, nil
}

// uuidParam lee un parámetro de ruta que debe ser UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool, error) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		return "", false, badRequest(c, "VALIDATION", name+" debe ser un UUID")
	}
	return v, true, nil
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "datos inválidos"
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Namespace()+": "+fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		return fmt.Sprintf("mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo %s", fe.Param())
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "formato esperado " + fe.Param()
	}
	return "inválido"
}
