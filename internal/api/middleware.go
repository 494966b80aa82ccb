package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients key
// their parsing on this field, so it only moves on a breaking change.
const envelopeVersion = 1

// Envelope is the uniform JSON body every API response is wrapped in.
// Success responses carry data; simple errors carry error; detailed errors
// carry code/message/details.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the envelope. It is
// registered as a huma transformer so handlers return bare DTOs.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	success := !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5")

	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code != "" {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
