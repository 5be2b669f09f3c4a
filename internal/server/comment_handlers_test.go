package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	post := h.fx.Post(testutil.PostOpts{Title: "p", Author: alice})
	commentURL := fmt.Sprintf("/posts/%d/comment", post.ID)

	countComments := func() int64 {
		var n int64
		h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n)
		return n
	}

	resp := h.do(http.MethodPost, commentURL, url.Values{"text": {"nice"}}, h.token(bob))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, postURL(post.ID), resp.Header.Get("Location"))
	assert.Equal(t, int64(1), countComments())

	resp = h.do(http.MethodPost, commentURL, url.Values{"text": {"   "}}, h.token(bob))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, int64(1), countComments())

	resp = h.do(http.MethodPost, "/posts/9999/comment", url.Values{"text": {"lost"}}, h.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddComment_FlagOff(t *testing.T) {
	h := newHarness(t, "comments=off")
	alice := h.user("alice")
	post := h.fx.Post(testutil.PostOpts{Title: "p", Author: alice})

	resp := h.do(http.MethodPost, fmt.Sprintf("/posts/%d/comment", post.ID), url.Values{"text": {"hi"}}, h.token(alice))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEditComment(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	post := h.fx.Post(testutil.PostOpts{Title: "p", Author: alice})
	other := h.fx.Post(testutil.PostOpts{Title: "other", Author: alice})
	comment := h.fx.Comment(post, bob, "original")

	editURL := fmt.Sprintf("/posts/%d/edit_comment/%d", post.ID, comment.ID)

	t.Run("post author cannot edit a reader's comment", func(t *testing.T) {
		resp := h.do(http.MethodPost, editURL, url.Values{"text": {"hijacked"}}, h.token(alice))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var stored models.Comment
		require.NoError(t, h.db.First(&stored, comment.ID).Error)
		assert.Equal(t, "original", stored.Text)
	})

	t.Run("comment must belong to the post", func(t *testing.T) {
		path := fmt.Sprintf("/posts/%d/edit_comment/%d", other.ID, comment.ID)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, nil, h.token(bob)).StatusCode)
	})

	t.Run("author sees bound form", func(t *testing.T) {
		doc := decode(t, h.do(http.MethodGet, editURL, nil, h.token(bob)))
		assert.Equal(t, "blog/comment.html", doc["template"])
		assert.Equal(t, "original", doc["form"].(map[string]any)["text"])
	})

	t.Run("empty text redisplays", func(t *testing.T) {
		resp := h.do(http.MethodPost, editURL, url.Values{"text": {""}}, h.token(bob))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		errs := decode(t, resp)["form"].(map[string]any)["errors"].(map[string]any)
		assert.Contains(t, errs, "text")
	})

	t.Run("author saves through the alias route", func(t *testing.T) {
		path := fmt.Sprintf("/posts/%d/comment/%d/edit", post.ID, comment.ID)
		resp := h.do(http.MethodPost, path, url.Values{"text": {"edited"}}, h.token(bob))
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, postURL(post.ID), resp.Header.Get("Location"))

		var stored models.Comment
		require.NoError(t, h.db.First(&stored, comment.ID).Error)
		assert.Equal(t, "edited", stored.Text)
	})
}

func TestDeleteComment(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	post := h.fx.Post(testutil.PostOpts{Title: "p", Author: alice})
	comment := h.fx.Comment(post, bob, "bye")
	deleteURL := fmt.Sprintf("/posts/%d/delete_comment/%d", post.ID, comment.ID)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, deleteURL, nil, h.token(alice)).StatusCode)

	doc := decode(t, h.do(http.MethodGet, deleteURL, nil, h.token(bob)))
	assert.Equal(t, "blog/comment.html", doc["template"])
	assert.NotContains(t, doc, "form")

	resp := h.do(http.MethodPost, deleteURL, nil, h.token(bob))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, postURL(post.ID), resp.Header.Get("Location"))

	var n int64
	h.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&n)
	assert.Zero(t, n)
}
