package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visibilityWorld struct {
	*fixture
	author    *models.User
	published *models.Category
	hidden    *models.Category
	visible   *models.Post
	older     *models.Post
	draft     *models.Post
	future    *models.Post
	inHidden  *models.Post
	noCat     *models.Post
}

func newVisibilityWorld(t *testing.T) *visibilityWorld {
	f := newFixture(t)
	w := &visibilityWorld{fixture: f}
	w.author = f.user(t, "author")
	w.published = f.category(t, "travel", true)
	w.hidden = f.category(t, "secret", false)

	w.visible = f.post(t, w.author, w.published, "visible", true, f.now.Add(-time.Hour))
	w.older = f.post(t, w.author, w.published, "older", true, f.now.Add(-48*time.Hour))
	w.draft = f.post(t, w.author, w.published, "draft", false, f.now.Add(-time.Hour))
	w.future = f.post(t, w.author, w.published, "future", true, f.now.Add(time.Hour))
	w.inHidden = f.post(t, w.author, w.hidden, "in hidden category", true, f.now.Add(-time.Hour))
	w.noCat = f.post(t, w.author, nil, "no category", true, f.now.Add(-time.Hour))

	reader := f.user(t, "reader")
	f.comment(t, w.older, reader, "first", f.now.Add(-47*time.Hour))
	f.comment(t, w.older, reader, "second", f.now.Add(-46*time.Hour))
	return w
}

func TestPostQuery_DefaultReturnsOnlyVisiblePosts(t *testing.T) {
	w := newVisibilityWorld(t)

	var posts []*models.Post
	require.NoError(t, PostQuery(w.db, At(w.now)).Find(&posts).Error)

	assert.Equal(t, []uint{w.visible.ID, w.older.ID}, postIDs(posts), "newest first, hidden posts excluded")
	assert.Equal(t, 0, posts[0].CommentCount)
	assert.Equal(t, 2, posts[1].CommentCount)
	assert.Equal(t, "author", posts[0].Author.Username)
	require.NotNil(t, posts[0].Category)
	assert.Equal(t, "travel", posts[0].Category.Slug)

	for _, p := range posts {
		assert.True(t, p.IsVisibleAt(w.now))
	}
}

func TestPostQuery_Unfiltered(t *testing.T) {
	w := newVisibilityWorld(t)

	var posts []*models.Post
	require.NoError(t, PostQuery(w.db, At(w.now), Unfiltered(), ByAuthor(w.author.ID)).Find(&posts).Error)
	assert.Len(t, posts, 6)
	assert.Equal(t, w.future.ID, posts[0].ID, "future post sorts first by pub_date")
}

func TestPostQuery_VisibilityMovesWithClock(t *testing.T) {
	w := newVisibilityWorld(t)

	var posts []*models.Post
	require.NoError(t, PostQuery(w.db, At(w.now.Add(2*time.Hour))).Find(&posts).Error)
	assert.Equal(t, []uint{w.future.ID, w.visible.ID, w.older.ID}, postIDs(posts))
}

func TestPostQuery_WithoutCommentCount(t *testing.T) {
	w := newVisibilityWorld(t)

	var posts []*models.Post
	require.NoError(t, PostQuery(w.db, At(w.now), WithoutCommentCount()).Find(&posts).Error)
	require.Len(t, posts, 2)
	assert.Zero(t, posts[1].CommentCount)
}

func TestPostQuery_InCategory(t *testing.T) {
	w := newVisibilityWorld(t)

	var posts []*models.Post
	require.NoError(t, PostQuery(w.db, At(w.now), InCategory(w.hidden.ID)).Find(&posts).Error)
	assert.Empty(t, posts)

	require.NoError(t, PostQuery(w.db, At(w.now), InCategory(w.published.ID)).Find(&posts).Error)
	assert.Equal(t, []uint{w.visible.ID, w.older.ID}, postIDs(posts))
}

func TestCountPosts_MatchesQuery(t *testing.T) {
	w := newVisibilityWorld(t)
	ctx := context.Background()

	total, err := CountPosts(ctx, w.db, At(w.now))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = CountPosts(ctx, w.db, At(w.now), Unfiltered())
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
}

func TestPostRepository_ListPaginates(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	cat := f.category(t, "daily", true)
	for i := 0; i < 12; i++ {
		f.post(t, author, cat, fmt.Sprintf("post %02d", i), true, f.now.Add(-time.Duration(i+1)*time.Hour))
	}

	repo := NewPostRepository(f.db)
	ctx := context.Background()

	first, err := repo.List(ctx, "", 10, At(f.now))
	require.NoError(t, err)
	assert.Len(t, first.Posts, 10)
	assert.Equal(t, 2, first.NumPages)
	assert.Equal(t, "post 00", first.Posts[0].Title)

	second, err := repo.List(ctx, "2", 10, At(f.now))
	require.NoError(t, err)
	assert.Len(t, second.Posts, 2)
	assert.Equal(t, "post 11", second.Posts[1].Title)

	clamped, err := repo.List(ctx, "7", 10, At(f.now))
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
	assert.Len(t, clamped.Posts, 2)

	empty, err := repo.List(ctx, "1", 10, At(f.now), ByAuthor(author.ID+100))
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, 1, empty.NumPages)
}
