package access

import (
	"net/http"

	"github.com/AlexTsikhun/social-media-api/internal/errs"
)

// Ownable is implemented by every user-owned resource.
type Ownable interface {
	OwnerID() string
}

// CanRead is always true: every resource is publicly readable.
func CanRead(principal string, obj Ownable) bool {
	return true
}

func CanWrite(principal string, obj Ownable) bool {
	return principal != "" && principal == obj.OwnerID()
}

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Authorize gates unsafe methods on ownership.
func Authorize(method, principal string, obj Ownable) error {
	if IsSafeMethod(method) {
		if CanRead(principal, obj) {
			return nil
		}
		return errs.ErrForbidden
	}
	if principal == "" {
		return errs.ErrUnauthenticated
	}
	if !CanWrite(principal, obj) {
		return errs.ErrForbidden
	}
	return nil
}
