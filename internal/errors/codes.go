package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthPhoneExists        = "AUTH_PHONE_EXISTS"
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationRequired         = "VALIDATION_REQUIRED"
	ValidationInvalidInput     = "VALIDATION_INVALID_INPUT"
	ValidationInvalidRange     = "VALIDATION_INVALID_RANGE"
	ValidationFileType         = "VALIDATION_FILE_TYPE"
	ValidationFileTooLarge     = "VALIDATION_FILE_TOO_LARGE"
	ValidationPasswordWeak     = "VALIDATION_PASSWORD_WEAK"
	ValidationPasswordMismatch = "VALIDATION_PASSWORD_MISMATCH"
	ValidationPhoneInvalid     = "VALIDATION_PHONE_INVALID"
	ValidationEmailInvalid     = "VALIDATION_EMAIL_INVALID"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (CATALOG_) ====================
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	CategoryNameExists  = "CATEGORY_NAME_EXISTS"
	CategoryHasProducts = "CATEGORY_HAS_PRODUCTS"
	ProductNotFound     = "PRODUCT_NOT_FOUND"

	// ==================== Cart (CART_) ====================
	CartNotFound        = "CART_NOT_FOUND"
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalStoreError  = "INTERNAL_STORE_ERROR"
)
