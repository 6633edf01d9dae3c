// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Provisioning errors
	CodeProvisionEmailRequired          Code = "PROVISION_EMAIL_REQUIRED"
	CodeProvisionPasswordRequired       Code = "PROVISION_PASSWORD_REQUIRED"
	CodeProvisionNameRequired           Code = "PROVISION_NAME_REQUIRED"
	CodeProvisionInvalidRole            Code = "PROVISION_INVALID_ROLE"
	CodeProvisionRestaurantNameRequired Code = "PROVISION_RESTAURANT_NAME_REQUIRED"
	CodeProvisionStepFailed             Code = "PROVISION_STEP_FAILED"
	CodeProvisionCreated                Code = "PROVISION_CREATED"

	// Ledger errors
	CodeLedgerFetchFailed Code = "LEDGER_FETCH_FAILED"
	CodeLedgerInvalidPage Code = "LEDGER_INVALID_PAGE"

	// Auth errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthUnauthorized       Code = "AUTH_UNAUTHORIZED"
	CodeAuthForbidden          Code = "AUTH_FORBIDDEN"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeProvisionEmailRequired,
		CodeProvisionPasswordRequired,
		CodeProvisionNameRequired,
		CodeProvisionInvalidRole,
		CodeProvisionRestaurantNameRequired,
		CodeLedgerInvalidPage:
		return http.StatusBadRequest

	case CodeAuthInvalidCredentials,
		CodeAuthUnauthorized:
		return http.StatusUnauthorized

	case CodeAuthForbidden:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	case CodeAlreadyExists:
		return http.StatusConflict

	// Upstream write failures surface as bad gateway so callers can
	// distinguish store outages from marketplace bugs.
	case CodeProvisionStepFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
