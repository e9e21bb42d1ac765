package errors

// Error code constants returned in the "error" field of JSON responses.
// Format: CATEGORY_SPECIFIC_DETAIL. Frontends map these to display text.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed/forged token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token blacklisted
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // admin identity required
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // owner identity required

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceInUse         = "RESOURCE_IN_USE" // delete blocked by references
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Cart (CART_) ====================
	CartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CartEmpty          = "CART_EMPTY"
	CartInvalidSize    = "CART_INVALID_SIZE"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderNotPending        = "ORDER_NOT_PENDING"        // only pending orders may be cancelled by customers
	OrderTerminalState     = "ORDER_TERMINAL_STATE"     // delivered/cancelled orders cannot transition
	OrderMissingCheckout   = "ORDER_MISSING_CHECKOUT"   // payment/delivery selection not staged
	OrderInsufficientStock = "ORDER_INSUFFICIENT_STOCK"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"
	ReviewNotDelivered  = "REVIEW_ORDER_NOT_DELIVERED"

	// ==================== Inbox (INBOX_) ====================
	InboxInvalidDirection = "INBOX_INVALID_DIRECTION"
	InboxAssignedElsewhere = "INBOX_ASSIGNED_ELSEWHERE" // conversation claimed by another admin

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
