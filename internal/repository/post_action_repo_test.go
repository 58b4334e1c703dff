package repository

import (
	"Keystone/internal/model"
	"Keystone/internal/testinfra"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostActionRepo_InteractionGroups(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewPostActionRepo(db)

	author := testinfra.CreateUser(t, db, "author", false)
	fan := testinfra.CreateUser(t, db, "fan", false)
	troll := testinfra.CreateUser(t, db, "troll", false)

	p1 := &model.Post{UserID: author.ID, Title: "p1", Content: "c"}
	p2 := &model.Post{UserID: author.ID, Title: "p2", Content: "c"}
	testinfra.CreatePost(t, db, p1)
	testinfra.CreatePost(t, db, p2)

	testinfra.CreateLike(t, db, &model.Like{UserID: fan.ID, PostID: p1.ID})
	testinfra.CreateLike(t, db, &model.Like{UserID: fan.ID, PostID: p2.ID})
	testinfra.CreateLike(t, db, &model.Like{UserID: troll.ID, PostID: p2.ID})

	testinfra.CreateComment(t, db, &model.PostComment{PostID: p1.ID, UserID: fan.ID, Content: "nice"})
	testinfra.CreateComment(t, db, &model.PostComment{PostID: p1.ID, UserID: troll.ID, Content: "bad", IsDeleted: true})

	postIDs, err := repo.GetPostIDsByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{p1.ID, p2.ID}, postIDs)

	likers, err := repo.GroupLikersByPosts(ctx, postIDs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []InteractionCount{
		{UserID: fan.ID, Count: 2},
		{UserID: troll.ID, Count: 1},
	}, likers)

	commenters, err := repo.GroupCommentersByPosts(ctx, postIDs)
	require.NoError(t, err)
	assert.Equal(t, []InteractionCount{{UserID: fan.ID, Count: 1}}, commenters)

	likers, err = repo.GroupLikersByPosts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, likers)
}
