package repository

import (
	"context"
	"testing"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_GetPublishedBySlug(t *testing.T) {
	f := newFixture(t)
	f.category(t, "travel", true)
	f.category(t, "secret", false)
	repo := NewCategoryRepository(f.db)
	ctx := context.Background()

	got, err := repo.GetPublishedBySlug(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "travel", got.Slug)

	_, err = repo.GetPublishedBySlug(ctx, "secret")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = repo.GetPublishedBySlug(ctx, "missing")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCategoryRepository_CreateDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Category{Title: "A", Description: "d", Slug: "dup", IsPublished: true}))
	err := repo.Create(ctx, &models.Category{Title: "B", Description: "d", Slug: "dup", IsPublished: true})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocationRepository_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	repo := NewLocationRepository(f.db)
	ctx := context.Background()

	loc := &models.Location{Name: "Moscow", IsPublished: true}
	require.NoError(t, repo.Create(ctx, loc))

	got, err := repo.GetByID(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moscow", got.Name)

	_, err = repo.GetByID(ctx, loc.ID+1)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
