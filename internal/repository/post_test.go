package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Test Post", Text: "Content", AuthorID: 1, IsPublished: true, PubDate: time.Now()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteRemovesCommentsInTransaction(t *testing.T) {
	tests := []struct {
		name        string
		postRows    int64
		expectedErr string
	}{
		{name: "deleted", postRows: 1},
		{name: "missing post", postRows: 0, expectedErr: models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
				WithArgs(5).
				WillReturnResult(sqlmock.NewResult(0, 2))
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
				WithArgs(5).
				WillReturnResult(sqlmock.NewResult(0, tt.postRows))
			if tt.expectedErr == "" {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := repo.Delete(context.Background(), 5)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, models.HasCode(err, tt.expectedErr))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_DeleteRollsBackOnCommentFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteCascadesOnSQLite(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	cat := f.category(t, "travel", true)
	post := f.post(t, author, cat, "to delete", true, f.now.Add(-time.Hour))
	keep := f.post(t, author, cat, "to keep", true, f.now.Add(-time.Hour))
	f.comment(t, post, author, "gone", f.now)
	f.comment(t, keep, author, "stays", f.now)

	repo := NewPostRepository(f.db)
	require.NoError(t, repo.Delete(context.Background(), post.ID))

	var comments []models.Comment
	require.NoError(t, f.db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, keep.ID, comments[0].PostID)

	_, err := repo.GetByID(context.Background(), post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_GetVisibleByID(t *testing.T) {
	w := newVisibilityWorld(t)
	repo := NewPostRepository(w.db)
	ctx := context.Background()

	got, err := repo.GetVisibleByID(ctx, w.visible.ID, w.now)
	require.NoError(t, err)
	assert.Equal(t, "visible", got.Title)

	for _, hidden := range []*models.Post{w.draft, w.future, w.inHidden, w.noCat} {
		_, err := repo.GetVisibleByID(ctx, hidden.ID, w.now)
		assert.True(t, models.HasCode(err, models.CodeNotFound), hidden.Title)
	}
}

func TestPostRepository_GetByIDIgnoresVisibility(t *testing.T) {
	w := newVisibilityWorld(t)
	got, err := NewPostRepository(w.db).GetByID(context.Background(), w.draft.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)
	assert.Equal(t, "author", got.Author.Username)
}

func TestPostRepository_UpdateKeepsRelations(t *testing.T) {
	w := newVisibilityWorld(t)
	repo := NewPostRepository(w.db)
	ctx := context.Background()

	post, err := repo.GetByID(ctx, w.draft.ID)
	require.NoError(t, err)
	post.Title = "now public"
	post.IsPublished = true
	post.Author.Username = "must-not-propagate"
	require.NoError(t, repo.Update(ctx, post))

	reloaded, err := repo.GetVisibleByID(ctx, w.draft.ID, w.now)
	require.NoError(t, err)
	assert.Equal(t, "now public", reloaded.Title)
	assert.Equal(t, "author", reloaded.Author.Username)
}
