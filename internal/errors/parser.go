package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a message safe to show.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts low-level database and network errors into a
// user-facing code/message pair without leaking internals. The context
// string hints at the entity being operated on.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Server error"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Unique constraint violations (Postgres 23505, sqlite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key violations (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}

	// Not-null violations (23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	// Network / external service errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "External service unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	switch {
	case strings.Contains(errStr, "product_id") || strings.Contains(errStr, "products.product_id"):
		return ErrorInfo{Code: ProductIDExists, Message: "A product with this product id already exists"}
	case strings.Contains(errStr, "categories.name") || strings.Contains(errStr, "idx_categories_name"):
		return ErrorInfo{Code: CategoryExists, Message: "Category already exists"}
	case strings.Contains(errStr, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errStr, "waitlist"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Already on the waitlist for this product"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Record already exists"}
}

func notFoundMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "product"):
		return "Product not found"
	case strings.Contains(c, "category"):
		return "Category not found"
	case strings.Contains(c, "order"):
		return "Order not found"
	case strings.Contains(c, "user"):
		return "User not found"
	case strings.Contains(c, "notification"):
		return "Notification not found"
	}
	return "Requested record not found"
}

func defaultMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "create"), strings.Contains(c, "add"):
		return "Failed to create record, please try again later"
	case strings.Contains(c, "update"):
		return "Failed to update record, please try again later"
	case strings.Contains(c, "delete"), strings.Contains(c, "remove"):
		return "Failed to delete record, please try again later"
	}
	return "Server error, please try again later"
}
