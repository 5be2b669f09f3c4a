package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/pagination"
	"blogicum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPostForm() *forms.PostForm {
	return &forms.PostForm{Title: "Trip", Text: "Mountains", PubDate: "2024-05-01T10:00", Category: "1"}
}

func TestPostServiceFeedUsesDefaultsAndClock(t *testing.T) {
	repo := noopPostRepo()
	var gotPerPage int
	var gotOpts int
	repo.listFn = func(_ context.Context, raw string, perPage int, opts ...repository.QueryOption) (*repository.PostPage, error) {
		gotPerPage = perPage
		gotOpts = len(opts)
		return &repository.PostPage{Page: pagination.NewPage(raw, 0, perPage)}, nil
	}

	svc := newTestPostService(repo, noopCommentRepo())
	page, err := svc.Feed(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, pagination.PostsPerPage, gotPerPage)
	assert.Equal(t, 1, gotOpts)
	assert.Equal(t, 1, page.Number)
}

func TestPostServiceDetail(t *testing.T) {
	draft := &models.Post{ID: 5, AuthorID: 7, IsPublished: false}

	tests := []struct {
		name      string
		viewerID  uint
		visible   bool
		wantCode  string
		wantQuery bool
	}{
		{name: "author sees draft", viewerID: 7},
		{name: "anonymous sees visible post", viewerID: 0, visible: true, wantQuery: true},
		{name: "other user denied hidden post", viewerID: 8, wantQuery: true, wantCode: models.CodeNotFound},
		{name: "anonymous denied hidden post", viewerID: 0, wantQuery: true, wantCode: models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return draft, nil }
			queried := false
			repo.getVisibleByIDFn = func(_ context.Context, id uint, now time.Time) (*models.Post, error) {
				queried = true
				assert.Equal(t, fixedNow, now)
				if tt.visible {
					return &models.Post{ID: id, AuthorID: 7, IsPublished: true}, nil
				}
				return nil, models.NewNotFoundError("Post", id)
			}
			comments := noopCommentRepo()
			comments.listByPostFn = func(_ context.Context, postID uint) ([]*models.Comment, error) {
				return []*models.Comment{{ID: 1, PostID: postID}}, nil
			}

			detail, err := newTestPostService(repo, comments).Detail(context.Background(), 5, tt.viewerID)
			assert.Equal(t, tt.wantQuery, queried)
			if tt.wantCode != "" {
				assert.True(t, models.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Len(t, detail.Comments, 1)
		})
	}
}

func TestPostServiceCategoryFeed(t *testing.T) {
	repo := noopPostRepo()
	svc := newTestPostService(repo, noopCommentRepo())

	_, _, err := svc.CategoryFeed(context.Background(), "secret", "")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	category, page, err := svc.CategoryFeed(context.Background(), "travel", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), category.ID)
	assert.NotNil(t, page)
}

func TestPostServiceProfileFeedOwnerSeesEverything(t *testing.T) {
	repo := noopPostRepo()
	var optCount int
	repo.listFn = func(_ context.Context, raw string, perPage int, opts ...repository.QueryOption) (*repository.PostPage, error) {
		optCount = len(opts)
		return &repository.PostPage{Page: pagination.NewPage(raw, 0, perPage)}, nil
	}
	svc := newTestPostService(repo, noopCommentRepo())
	author := &models.User{ID: 7}

	_, err := svc.ProfileFeed(context.Background(), author, 7, "")
	require.NoError(t, err)
	assert.Equal(t, 3, optCount, "owner listing adds Unfiltered")

	_, err = svc.ProfileFeed(context.Background(), author, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, optCount)
}

func TestPostServiceCreate(t *testing.T) {
	repo := noopPostRepo()
	var saved *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		saved = p
		p.ID = 11
		return nil
	}
	svc := newTestPostService(repo, noopCommentRepo())

	post, err := svc.Create(context.Background(), 7, validPostForm())
	require.NoError(t, err)
	assert.Equal(t, uint(11), post.ID)
	assert.Equal(t, uint(7), saved.AuthorID)
	assert.True(t, saved.IsPublished)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), saved.PubDate)
}

func TestPostServiceCreateRejectsUnknownChoices(t *testing.T) {
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("invalid form must not be saved")
		return nil
	}
	svc := newTestPostService(repo, noopCommentRepo())

	form := validPostForm()
	form.Category = "99"
	form.Location = "42"
	_, err := svc.Create(context.Background(), 7, form)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Equal(t, []string{forms.MsgInvalidChoice}, form.Errors["category"])
	assert.Equal(t, []string{forms.MsgInvalidChoice}, form.Errors["location"])

	form = &forms.PostForm{}
	_, err = svc.Create(context.Background(), 7, form)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.True(t, form.Errors.Has("title"))
}

func TestPostServiceOwnership(t *testing.T) {
	post := &models.Post{ID: 5, AuthorID: 7, Title: "old"}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		clone := *post
		return &clone, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := newTestPostService(repo, noopCommentRepo())
	ctx := context.Background()

	_, err := svc.GetForEdit(ctx, 5, 8)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	_, err = svc.Update(ctx, 5, 8, validPostForm())
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	assert.True(t, models.HasCode(svc.Delete(ctx, 5, 8), models.CodeForbidden))
	assert.False(t, deleted)

	updated, err := svc.Update(ctx, 5, 7, validPostForm())
	require.NoError(t, err)
	assert.Equal(t, "Trip", updated.Title)

	require.NoError(t, svc.Delete(ctx, 5, 7))
	assert.True(t, deleted)
}

func TestPostServiceUpdateInvalidKeepsPost(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 7, Title: "old"}, nil
	}
	repo.updateFn = func(_ context.Context, _ *models.Post) error {
		return errors.New("must not be called")
	}

	post, err := newTestPostService(repo, noopCommentRepo()).Update(context.Background(), 5, 7, &forms.PostForm{Title: "new"})
	assert.ErrorIs(t, err, ErrInvalidForm)
	require.NotNil(t, post)
	assert.Equal(t, "old", post.Title)
}
