package sheets

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// untypedCauses are matched only when the error carries no structured code.
var untypedCauses = []string{
	"permission",
	"Unable to parse range",
	"not found",
	"invalid_grant",
	"Invalid JWT Signature",
}

// IsFallbackEligible reports whether err means the spreadsheet is unusable
// for a known configuration reason rather than a transient failure.
func IsFallbackEligible(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		case http.StatusBadRequest:
			return strings.Contains(apiErr.Message, "Unable to parse range") ||
				strings.Contains(string(apiErr.Body), "Unable to parse range")
		default:
			return false
		}
	}

	var grantErr *oauth2.RetrieveError
	if errors.As(err, &grantErr) {
		return grantErr.ErrorCode == "invalid_grant" ||
			strings.Contains(string(grantErr.Body), "invalid_grant") ||
			strings.Contains(string(grantErr.Body), "Invalid JWT Signature")
	}

	msg := err.Error()
	for _, cause := range untypedCauses {
		if strings.Contains(msg, cause) {
			return true
		}
	}
	return false
}
