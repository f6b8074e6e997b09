package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredError(t *testing.T) {
	resp := makeResponse(http.StatusBadRequest, `{"error":"missing recipient"}`)

	err := ParseResponseError(resp, "email-relay")
	assert.ErrorContains(t, err, "email-relay")
	assert.ErrorContains(t, err, "400")
	assert.ErrorContains(t, err, "missing recipient")
}

func TestParseResponseError_MessageField(t *testing.T) {
	resp := makeResponse(http.StatusInternalServerError, `{"message":"smtp unavailable"}`)

	err := ParseResponseError(resp, "email-relay")
	assert.ErrorContains(t, err, "smtp unavailable")
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, "upstream timeout")

	err := ParseResponseError(resp, "email-relay")
	assert.ErrorContains(t, err, "502")
	assert.ErrorContains(t, err, "upstream timeout")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
