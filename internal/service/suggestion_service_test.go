package service

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/model"
	"Keystone/internal/repository"
	"Keystone/internal/testinfra"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type suggestionFixture struct {
	db      *gorm.DB
	follows repository.UserFollowRepo
	posts   repository.PostActionRepo
	svc     *SuggestionServiceImpl
}

func newSuggestionFixture(t *testing.T) *suggestionFixture {
	t.Helper()
	db := testinfra.NewTestDB(t)
	f := &suggestionFixture{
		db:      db,
		follows: repository.NewUserFollowRepo(db),
		posts:   repository.NewPostActionRepo(db),
	}
	f.svc = NewSuggestionService(repository.NewUserRepo(db), f.follows, f.posts, 10, 50)
	return f
}

func (f *suggestionFixture) follow(t *testing.T, from, to uint64) {
	t.Helper()
	_, err := f.follows.Create(context.Background(), from, to)
	require.NoError(t, err)
	require.NoError(t, repository.NewUserCounterRepo(f.db).ApplyFollowDelta(context.Background(), to, from, 1))
}

func (f *suggestionFixture) post(t *testing.T, owner uint64) uint64 {
	t.Helper()
	p := &model.Post{UserID: owner, Title: "t", Content: "c"}
	testinfra.CreatePost(t, f.db, p)
	return p.ID
}

func suggestedIDs(list []*dto.SuggestionDTO) []uint64 {
	ids := make([]uint64, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.User.ID)
	}
	return ids
}

// A 有 3 个粉丝、关注 2 人，粉丝 B 点赞了 A 的 4 篇帖子并评论 1 次
func TestSuggest_InteractionRanksAboveStrangers(t *testing.T) {
	f := newSuggestionFixture(t)
	ctx := context.Background()

	a := testinfra.CreateUser(t, f.db, "a", true)
	b := testinfra.CreateUser(t, f.db, "b", true)
	c := testinfra.CreateUser(t, f.db, "c", true)
	d := testinfra.CreateUser(t, f.db, "d", true)
	e := testinfra.CreateUser(t, f.db, "e", true)
	g := testinfra.CreateUser(t, f.db, "g", true)
	stranger := testinfra.CreateUser(t, f.db, "stranger", true)

	for _, fan := range []uint64{b.ID, c.ID, d.ID} {
		f.follow(t, fan, a.ID)
	}
	f.follow(t, a.ID, e.ID)
	f.follow(t, a.ID, g.ID)

	for i := 0; i < 4; i++ {
		postID := f.post(t, a.ID)
		testinfra.CreateLike(t, f.db, &model.Like{UserID: b.ID, PostID: postID})
		if i == 0 {
			testinfra.CreateComment(t, f.db, &model.PostComment{PostID: postID, UserID: b.ID, Content: "hi"})
		}
	}

	list, err := f.svc.Suggest(ctx, a.ID, 5)
	require.NoError(t, err)
	ids := suggestedIDs(list)
	require.Len(t, ids, 4, "three scored users plus the only verified stranger")

	assert.Equal(t, b.ID, ids[0])
	assert.InDelta(t, 15.5, list[0].InteractionScore, 1e-9)
	assert.ElementsMatch(t, []uint64{c.ID, d.ID}, ids[1:3])
	assert.Equal(t, stranger.ID, ids[3])
	assert.Zero(t, list[3].InteractionScore)
	assert.NotContains(t, ids, a.ID)
	assert.NotContains(t, ids, e.ID)
	assert.NotContains(t, ids, g.ID)
	for _, s := range list {
		assert.False(t, s.IsFollowing)
	}

	// 关注 B 之后 B 不再出现
	f.follow(t, a.ID, b.ID)
	list, err = f.svc.Suggest(ctx, a.ID, 5)
	require.NoError(t, err)
	assert.NotContains(t, suggestedIDs(list), b.ID)
}

func TestSuggest_TieBreakByFollowers(t *testing.T) {
	f := newSuggestionFixture(t)
	ctx := context.Background()

	me := testinfra.CreateUser(t, f.db, "me", false)
	quiet := testinfra.CreateUser(t, f.db, "quiet", false)
	popular := testinfra.CreateUser(t, f.db, "popular", false)
	other := testinfra.CreateUser(t, f.db, "other", false)

	f.follow(t, quiet.ID, me.ID)
	f.follow(t, popular.ID, me.ID)
	f.follow(t, other.ID, popular.ID)

	list, err := f.svc.Suggest(ctx, me.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{popular.ID, quiet.ID}, suggestedIDs(list))
}

func TestSuggest_BackfillsWithRandomVerified(t *testing.T) {
	f := newSuggestionFixture(t)
	ctx := context.Background()

	me := testinfra.CreateUser(t, f.db, "me", true)
	followed := testinfra.CreateUser(t, f.db, "followed", true)
	testinfra.CreateUser(t, f.db, "unverified", false)
	var verified []uint64
	for i := 0; i < 4; i++ {
		verified = append(verified, testinfra.CreateUser(t, f.db, "v", true).ID)
	}
	f.follow(t, me.ID, followed.ID)

	list, err := f.svc.Suggest(ctx, me.ID, 3)
	require.NoError(t, err)
	ids := suggestedIDs(list)
	assert.Len(t, ids, 3)
	assert.Subset(t, verified, ids)

	list, err = f.svc.Suggest(ctx, me.ID, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, verified, suggestedIDs(list), "default limit exceeds the pool")
}

type failingPostRepo struct {
	repository.PostActionRepo
}

func (failingPostRepo) GroupLikersByPosts(context.Context, []uint64) ([]repository.InteractionCount, error) {
	return nil, errors.New("likes table offline")
}

func TestSuggest_SignalFailureIsTolerated(t *testing.T) {
	f := newSuggestionFixture(t)
	ctx := context.Background()

	me := testinfra.CreateUser(t, f.db, "me", false)
	liker := testinfra.CreateUser(t, f.db, "liker", false)
	fan := testinfra.CreateUser(t, f.db, "fan", false)

	postID := f.post(t, me.ID)
	testinfra.CreateLike(t, f.db, &model.Like{UserID: liker.ID, PostID: postID})
	f.follow(t, fan.ID, me.ID)

	svc := NewSuggestionService(repository.NewUserRepo(f.db), f.follows, failingPostRepo{f.posts}, 10, 50)
	list, err := svc.Suggest(ctx, me.ID, 5)
	require.NoError(t, err)
	ids := suggestedIDs(list)
	assert.Equal(t, []uint64{fan.ID}, ids)
}

func TestSuggest_LimitIsCapped(t *testing.T) {
	f := newSuggestionFixture(t)
	ctx := context.Background()

	me := testinfra.CreateUser(t, f.db, "me", false)
	for i := 0; i < 4; i++ {
		testinfra.CreateUser(t, f.db, "v", true)
	}

	svc := NewSuggestionService(repository.NewUserRepo(f.db), f.follows, f.posts, 2, 3)
	list, err := svc.Suggest(ctx, me.ID, 100)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = svc.Suggest(ctx, me.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
