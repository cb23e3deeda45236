package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("Post not found"), http.StatusNotFound},
		{"validation", Field("comment_text", "This field may not be blank."), http.StatusBadRequest},
		{"self follow", ErrSelfFollow, http.StatusBadRequest},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"wrapped", fmt.Errorf("follow: %w", ErrAlreadyFollowing), http.StatusBadRequest},
		{"plain", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindValidation, Fields: map[string][]string{
		"title":   {"This field is required."},
		"content": {"This field is required."},
	}}
	assert.Equal(t, "content: This field is required.; title: This field is required.", err.Error())
	assert.Equal(t, "Post not found", NotFound("Post not found").Error())
}

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Respond(c, err)
	return w
}

func TestRespond(t *testing.T) {
	t.Run("message body", func(t *testing.T) {
		w := respond(NotFound("Post not found"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Post not found"}`, w.Body.String())
	})

	t.Run("field body", func(t *testing.T) {
		w := respond(Field("comment_text", "This field may not be blank."))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"comment_text":["This field may not be blank."]}`, w.Body.String())
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		w := respond(errors.New("pq: relation does not exist"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	})
}

type postInput struct {
	Title   string  `json:"title" binding:"required,max=5"`
	Content string  `json:"content" binding:"required,notblank"`
	Bio     *string `json:"bio" binding:"omitempty,notblank"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	UseJSONFieldNames()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var in postInput
	return c.ShouldBindJSON(&in)
}

func TestFromBinding(t *testing.T) {
	t.Run("field errors use json names", func(t *testing.T) {
		err := FromBinding(bind(t, `{"title":"too long title","content":"   ","bio":""}`))

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, e.Fields["title"])
		assert.Equal(t, []string{"This field may not be blank."}, e.Fields["content"])
		assert.Equal(t, []string{"This field may not be blank."}, e.Fields["bio"])
	})

	t.Run("missing fields", func(t *testing.T) {
		err := FromBinding(bind(t, `{}`))

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, []string{"This field is required."}, e.Fields["title"])
		assert.NotContains(t, e.Fields, "bio")
	})

	t.Run("malformed json", func(t *testing.T) {
		err := FromBinding(bind(t, `{"title":`))
		assert.Equal(t, http.StatusBadRequest, Status(err))
	})

	t.Run("wrong type", func(t *testing.T) {
		err := FromBinding(bind(t, `{"title":3,"content":"x"}`))

		var e *Error
		require.True(t, errors.As(err, &e))
		body, _ := json.Marshal(e.Fields)
		assert.JSONEq(t, `{"title":["Invalid type."]}`, string(body))
	})
}
