package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the parsed form of a store error.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a persistence error into a code and a message safe
// to show to the caller. Driver detail stays in the server-side logs.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "internal server error",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// PostgreSQL unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalStoreError,
			Message: "the store is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: defaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "phone") {
		return ErrorInfo{Code: AuthPhoneExists, Message: "a user with this phone number already exists"}
	}
	if strings.Contains(errLower, "username") {
		return ErrorInfo{Code: AuthUsernameExists, Message: "a user with this name already exists"}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: AuthEmailExists, Message: "a user with this email already exists"}
	}
	if strings.Contains(errLower, "categories") || strings.Contains(errLower, "idx_categories_name") {
		return ErrorInfo{Code: CategoryNameExists, Message: "a category with this name already exists"}
	}
	if strings.Contains(errLower, "carts") && strings.Contains(errLower, "user_id") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "the cart already exists, please retry"}
	}
	if strings.Contains(errLower, "cart_items") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "the item is already in the cart, please retry"}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "the record already exists",
	}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "the record is referenced by other data and cannot be deleted",
		}
	}
	if strings.Contains(errLower, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "the referenced product does not exist"}
	}
	if strings.Contains(errLower, "category_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "the referenced category does not exist"}
	}
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "the referenced user does not exist"}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "a referenced record could not be found",
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "category"):
		return "category not found"
	case strings.Contains(contextLower, "product"):
		return "product not found"
	case strings.Contains(contextLower, "cart"):
		return "cart not found"
	case strings.Contains(contextLower, "user"):
		return "user not found"
	}
	return "the requested record was not found"
}

func defaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "failed to create the record, please try again later"
	case strings.Contains(contextLower, "update"):
		return "failed to update the record, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "failed to delete the record, please try again later"
	}
	return "internal server error, please try again later"
}
