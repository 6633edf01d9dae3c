package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown = "UNKNOWN"

	CodeProvisionEmailRequired          = "PROVISION_EMAIL_REQUIRED"
	CodeProvisionPasswordRequired       = "PROVISION_PASSWORD_REQUIRED"
	CodeProvisionNameRequired           = "PROVISION_NAME_REQUIRED"
	CodeProvisionInvalidRole            = "PROVISION_INVALID_ROLE"
	CodeProvisionRestaurantNameRequired = "PROVISION_RESTAURANT_NAME_REQUIRED"
	CodeProvisionStepFailed             = "PROVISION_STEP_FAILED"
	CodeProvisionCreated                = "PROVISION_CREATED"

	CodeLedgerFetchFailed = "LEDGER_FETCH_FAILED"
	CodeLedgerInvalidPage = "LEDGER_INVALID_PAGE"

	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthUnauthorized       = "AUTH_UNAUTHORIZED"
	CodeAuthForbidden          = "AUTH_FORBIDDEN"

	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "Something went wrong. Please try again",

		// Provisioning
		CodeProvisionEmailRequired:          "Email address is required",
		CodeProvisionPasswordRequired:       "Password is required",
		CodeProvisionNameRequired:           "Display name is required",
		CodeProvisionInvalidRole:            "Invalid account role specified",
		CodeProvisionRestaurantNameRequired: "Restaurant name is required for restaurant accounts",
		CodeProvisionStepFailed:             "Account creation failed at step {{.Step}}: {{.Reason}}",
		CodeProvisionCreated:                "Account created successfully",

		// Ledger
		CodeLedgerFetchFailed: "Failed to fetch transactions",
		CodeLedgerInvalidPage: "Invalid page parameters",

		// Auth
		CodeAuthInvalidCredentials: "Invalid email or password",
		CodeAuthUnauthorized:       "Authentication required",
		CodeAuthForbidden:          "You do not have permission to perform this action",

		// Storage
		CodeNotFound:      "The requested record was not found",
		CodeAlreadyExists: "An account with this email already exists",
	},
}
