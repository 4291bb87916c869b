package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"inreader-backend/internal/shared/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// BindJSON decodes the request body into dest and runs struct validation.
func BindJSON(c *gin.Context, dest any) error {
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body")
	}
	return Struct(dest)
}

// Messager lets a request type override the message reported for a failed
// field rule.
type Messager interface {
	ValidationMessage(field, tag string) (string, bool)
}

// Struct validates dest using its `validate` tags.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("validation failed")
	}
	messages := make([]string, 0, len(verrs))
	custom, _ := dest.(Messager)
	for _, fe := range verrs {
		if custom != nil {
			if msg, ok := custom.ValidationMessage(fe.Field(), fe.Tag()); ok {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, message(fe))
	}
	sort.Strings(messages)
	return apperr.Validation(messages...)
}

// UUIDParam reads a path parameter and rejects values that are not UUIDs.
func UUIDParam(c *gin.Context, name string) (string, error) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperr.Validation("Validation failed (uuid is expected)")
	}
	return raw, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
