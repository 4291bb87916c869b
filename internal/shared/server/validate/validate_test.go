package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/apperr"
)

type registerBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func newContext(body, param string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if param != "" {
		c.Params = gin.Params{{Key: "id", Value: param}}
	}
	return c
}

func TestBindJSONCollectsFieldMessages(t *testing.T) {
	var body registerBody
	err := BindJSON(newContext(`{"email":"nope","password":"123"}`, ""), &body)

	typed, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, typed.Kind)
	assert.Equal(t, []string{
		"email must be an email",
		"password must be longer than or equal to 6 characters",
	}, typed.Messages)
}

func TestBindJSONRejectsEmptyBody(t *testing.T) {
	var body registerBody
	err := BindJSON(newContext("", ""), &body)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestBindJSONAcceptsValidBody(t *testing.T) {
	var body registerBody
	require.NoError(t, BindJSON(newContext(`{"email":"a@b.com","password":"123456"}`, ""), &body))
	assert.Equal(t, "a@b.com", body.Email)
}

func TestUUIDParam(t *testing.T) {
	_, err := UUIDParam(newContext("", "not-a-uuid"), "id")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	id, err := UUIDParam(newContext("", "6f1c2a8e-8d1f-4d56-9a7c-0f6c1b7f2d11"), "id")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a8e-8d1f-4d56-9a7c-0f6c1b7f2d11", id)
}

type promptBody struct {
	Prompt string `json:"prompt" validate:"required"`
}

func (promptBody) ValidationMessage(field, _ string) (string, bool) {
	if field == "prompt" {
		return "prompt is mandatory", true
	}
	return "", false
}

func TestStructUsesCustomMessages(t *testing.T) {
	err := Struct(&promptBody{})

	typed, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "prompt is mandatory", typed.Message)
}
