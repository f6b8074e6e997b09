package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=2"`
	Quantity int    `validate:"gte=1"`
	Volume   string `validate:"oneof=30ml 65ml"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(sampleRequest{
		Email:    "ron@example.com",
		FullName: "Ron",
		Quantity: 2,
		Volume:   "30ml",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	err := Validate(sampleRequest{Email: "not-an-email", Quantity: 0, Volume: "90ml"})
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "is required", fields["FullName"])
	assert.Equal(t, "must be greater than or equal to 1", fields["Quantity"])
	assert.Contains(t, fields["Volume"], "must be one of")

	assert.Contains(t, valErr.Error(), "field 'Email'")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"Email":"ron@example.com","FullName":"Ron","Quantity":1,"Volume":"65ml"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var dst sampleRequest
	assert.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "ron@example.com", dst.Email)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))

	var dst sampleRequest
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
