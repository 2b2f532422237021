package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Age   int    `json:"age" binding:"omitempty,min=18"`
}

func validate(s sample) error {
	Init()
	return binding.Validator.ValidateStruct(&s)
}

func TestToDetails_ValidationErrorsUseJSONNames(t *testing.T) {
	details := ToDetails(validate(sample{Email: "nope", Name: "J", Age: 3}))

	assert.Equal(t, map[string]string{
		"email": "must be a valid email",
		"name":  "must be at least 2 characters long",
		"age":   "must be at least 18",
	}, details)
}

func TestToDetails_Required(t *testing.T) {
	details := ToDetails(validate(sample{}))
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "is required", details["name"])
}

func TestToDetails_JSONErrors(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"email":`), &s)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"name": 12}`), &s)
	assert.Equal(t, map[string]string{"name": "must be a string"}, ToDetails(err))
}

func TestToDetails_Fallback(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
}
