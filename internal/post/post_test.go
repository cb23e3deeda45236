package post

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/errs"
	"github.com/AlexTsikhun/social-media-api/internal/target"
	"github.com/AlexTsikhun/social-media-api/internal/testutil"
)

const (
	authorID  = "2f4e6a8c-0b1d-4e3f-a5b7-c9d1e3f5a7b9"
	viewerID  = "7c5a3e1f-9d7b-4a5c-b3e1-f9d7b5a3c1e0"
	postID    = "4b6d8f0a-2c4e-4a6b-8d0f-1a3c5e7b9d2f"
	commentID = "1e3c5a7f-9b1d-4f3a-8c5e-7a9b1d3f5c7e"
	missingID = "ffffffff-ffff-4fff-bfff-ffffffffffff"
)

var postCols = []string{"id", "user_id", "title", "image", "content", "created_at"}

func postRow() *sqlmock.Rows {
	return sqlmock.NewRows(postCols).
		AddRow(postID, authorID, "Hello", "", "First post", time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC))
}

func registry() *target.Registry {
	reg := target.NewRegistry()
	RegisterTargets(reg)
	return reg
}

func TestListFilter(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE user_id = $1 AND title ILIKE $2 AND (created_at >= $3 AND created_at < $4) ORDER BY created_at DESC LIMIT`)).
		WillReturnRows(postRow())

	posts, err := List(db, Filter{UserID: authorID, Title: "hel", PostDate: &day, Limit: 500})

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).WillReturnRows(postRow())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).WillReturnRows(sqlmock.NewRows(postCols))

	p, err := Get(db, postID)
	require.NoError(t, err)
	assert.Equal(t, authorID, p.OwnerID())

	_, err = Get(db, missingID)
	assert.EqualError(t, err, "Post not found")

	_, err = Get(db, "not-a-uuid")
	assert.True(t, errs.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascades(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE id = $1 FOR UPDATE`)).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments" WHERE target_type = $1 AND target_id = $2 FOR UPDATE`)).
		WithArgs(target.KindPost, postID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(commentID).AddRow(missingID))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE target_type = $1 AND target_id IN ($2,$3)`)).
		WithArgs(target.KindComment, commentID, missingID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE id IN ($1,$2)`)).
		WithArgs(commentID, missingID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE target_type = $1 AND target_id IN ($2)`)).
		WithArgs(target.KindPost, postID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(postID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Delete(db, &Post{ID: postID, UserID: authorID}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRollsBack(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM "posts" .* FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
	mock.ExpectQuery(`FROM "comments" .* FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(commentID))
	mock.ExpectExec(`DELETE FROM "likes"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "comments"`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := Delete(db, &Post{ID: postID})

	assert.ErrorContains(t, err, "delete comments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsSharesTheRowLock(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE id = $1 FOR SHARE`)).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments" WHERE id = $1 FOR SHARE`)).
		WithArgs(commentID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ok, err := Exists(db, postID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CommentExists(db, commentID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment(t *testing.T) {
	t.Run("missing post wins over blank text", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockPost).WithArgs(missingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := AddComment(db, registry(), target.Ref{Kind: target.KindPost, ID: missingID}, viewerID, "")

		assert.EqualError(t, err, "Post not found")
		assert.Equal(t, http.StatusNotFound, errs.Status(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank text", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockPost).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
		mock.ExpectRollback()

		_, err := AddComment(db, registry(), target.Ref{Kind: target.KindPost, ID: postID}, viewerID, "  \n ")

		var e *errs.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, []string{"This field may not be blank."}, e.Fields["comment_text"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stores trimmed text while the post is locked", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockPost).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "comments"`)).
			WithArgs(sqlmock.AnyArg(), viewerID, target.KindPost, postID, "Nice!", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cm, err := AddComment(db, registry(), target.Ref{Kind: target.KindPost, ID: postID}, viewerID, " Nice! ")

		require.NoError(t, err)
		assert.Equal(t, viewerID, cm.OwnerID())
		assert.NotEmpty(t, cm.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListUserComments(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectQuery(`FROM comments AS c JOIN users u ON u.id = c.user_id LEFT JOIN posts p ON c.target_type = \$1 AND p.id = c.target_id WHERE c.user_id = \$2 AND p.title ILIKE \$3`).
		WithArgs(target.KindPost, viewerID, "%hello%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user", "target_type", "target_id", "post_title", "comment_text", "created_at"}).
			AddRow(commentID, "viewer", "post", postID, "Hello", "Nice!", time.Now()))

	views, err := ListUserComments(db, viewerID, "hello")

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Hello", views[0].PostTitle)
	assert.Equal(t, target.KindPost, views[0].TargetType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUserCommentsMatchesWildcardsLiterally(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectQuery(`p.title ILIKE \$3`).
		WithArgs(target.KindPost, viewerID, `%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user", "target_type", "target_id", "post_title", "comment_text", "created_at"}))

	views, err := ListUserComments(db, viewerID, "50%_off")

	require.NoError(t, err)
	assert.Empty(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteComment(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments" WHERE id = $1 FOR UPDATE`)).
		WithArgs(commentID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(commentID))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE target_type = $1 AND target_id IN ($2)`)).
		WithArgs(target.KindComment, commentID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE "comments"."id" = $1`)).
		WithArgs(commentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, DeleteComment(db, &Comment{ID: commentID}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterCapsLimit(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	dry := db.Session(&gorm.Session{DryRun: true})

	tests := []struct {
		name string
		in   Filter
		want int
	}{
		{"default", Filter{}, DefaultLimit},
		{"capped", Filter{Limit: 1000}, MaxLimit},
		{"kept", Filter{Limit: 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := tt.in.apply(dry).Find(&[]Post{}).Statement
			sql := stmt.SQL.String()
			limit := fmt.Sprintf("LIMIT %d", tt.want)
			if !strings.Contains(sql, limit) {
				require.NotEmpty(t, stmt.Vars)
				assert.EqualValues(t, tt.want, stmt.Vars[len(stmt.Vars)-1])
			}
		})
	}
}
