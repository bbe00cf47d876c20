package crm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dealerbridge_backend/platform/apperr"
)

// apiErrorBody is the error envelope the CRM API returns.
type apiErrorBody struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

// decodeError turns a non-2xx CRM response into a typed domain error.
// "Not found" and "invalid option" responses are reformatted into guidance
// an operator can act on; everything else carries a status-derived message.
func decodeError(op string, statusCode int, body []byte) error {
	var envelope apiErrorBody
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusNotFound:
		return apperr.NotFound(fmt.Sprintf("CRM resource not found (%s): %s", op, message)).WithOp(op)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return apperr.Config(fmt.Sprintf("CRM rejected the credential (%s): check the tenant's token environment variable", op)).WithOp(op)
	case isInvalidOption(envelope, message):
		return apperr.BadRequest(fmt.Sprintf(
			"CRM rejected an enumerated option (%s): %s; the option must exist on the property before the write, run the property sync", op, message,
		)).WithOp(op)
	default:
		return apperr.Upstream(fmt.Sprintf("CRM request failed (%s): status %d: %s", op, statusCode, message)).WithOp(op)
	}
}

func isInvalidOption(envelope apiErrorBody, message string) bool {
	if strings.EqualFold(envelope.Category, "VALIDATION_ERROR") && strings.Contains(strings.ToLower(message), "option") {
		return true
	}
	return strings.Contains(message, "was not one of the allowed options")
}
