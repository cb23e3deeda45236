package errs

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/AlexTsikhun/social-media-api/internal/logs"
)

// Respond writes err as a JSON body and aborts the request.
func Respond(c *gin.Context, err error) {
	status := Status(err)

	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		logs.LogJSON("ERROR", "Unhandled error", map[string]interface{}{
			"route":  c.FullPath(),
			"userID": c.GetString("user_id"),
			"error":  err.Error(),
		})
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}

	if e.Message == "" && len(e.Fields) > 0 {
		c.AbortWithStatusJSON(status, e.Fields)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e.Message})
}

// FromBinding converts a gin ShouldBindJSON failure into a validation error.
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &Error{Kind: KindValidation, Fields: map[string][]string{}}
		for _, fe := range verrs {
			out.Fields[fe.Field()] = append(out.Fields[fe.Field()], fieldMessage(fe))
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return Field(typeErr.Field, "Invalid type.")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return Validation("Malformed JSON body.")
	}
	return Validation("Invalid request body.")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "alphanumunicode", "username":
		return "Enter a valid username."
	default:
		return "Invalid value."
	}
}

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json tag.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() == reflect.Ptr {
				if field.IsNil() {
					return true
				}
				field = field.Elem()
			}
			return field.Kind() != reflect.String || strings.TrimSpace(field.String()) != ""
		})
	})
}
