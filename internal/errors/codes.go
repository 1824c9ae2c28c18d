package errors

// Error code constants returned in the "error" field of failure responses.
// Format: CATEGORY_SPECIFIC_DETAIL; the admin and storefront UIs map these
// codes to display messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Catalog (PRODUCT_ / CATEGORY_) ====================
	ProductNotFound       = "PRODUCT_NOT_FOUND"
	ProductIDExists       = "PRODUCT_ID_EXISTS"
	ProductImagesRequired = "PRODUCT_IMAGES_REQUIRED"
	CategoryNotFound      = "CATEGORY_NOT_FOUND"
	CategoryExists        = "CATEGORY_EXISTS"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderItemNotFound  = "ORDER_ITEM_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"
	OrderSizeMismatch  = "ORDER_SIZE_NOT_AVAILABLE"
	OrderEmpty         = "ORDER_EMPTY"

	// ==================== Payments (PAYMENT_) ====================
	PaymentNotConfigured = "PAYMENT_NOT_CONFIGURED"
	PaymentFailed        = "PAYMENT_FAILED"
	PaymentUnverified    = "PAYMENT_UNVERIFIED"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadTooManyFiles    = "UPLOAD_TOO_MANY_FILES"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
