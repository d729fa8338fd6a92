package implementation

import (
	"context"
	"testing"
	"time"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/model"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/repository/specification"
	"uny-compass-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, repo *UserRepositoryImpl, username, email string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t)).(*UserRepositoryImpl)

	alice := seedUser(t, repo, "alice", "alice@x.com")
	assert.NotZero(t, alice.Id)
	assert.False(t, alice.CreatedAt.IsZero())

	byName, err := repo.FindOne(ctx, specification.ByUsernameOrEmail{Identifier: "alice"})
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, alice.Id, byName.Id)

	byEmail, err := repo.FindOne(ctx, specification.ByUsernameOrEmail{Identifier: "alice@x.com"})
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, alice.Id, byEmail.Id)

	missing, err := repo.FindOne(ctx, specification.ByUsername{Username: "bob"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t)).(*UserRepositoryImpl)
	seedUser(t, repo, "alice", "alice@x.com")

	err := repo.Create(ctx, &entity.User{Username: "alice", Email: "other@x.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	other, err := repo.FindOne(ctx, specification.ByEmail{Email: "other@x.com"})
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestUserRepository_PasswordResetToken(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t)).(*UserRepositoryImpl)
	alice := seedUser(t, repo, "alice", "alice@x.com")

	token := &entity.PasswordResetToken{UserId: alice.Id, Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreatePasswordResetToken(ctx, token))
	require.NotZero(t, token.Id)

	require.NoError(t, repo.MarkTokenUsed(ctx, token.Id))

	found, err := repo.FindPasswordResetToken(ctx, specification.ByToken{Token: "tok-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Used)

	err = repo.MarkTokenUsed(ctx, token.Id)
	require.Error(t, err, "a consumed token cannot be claimed twice")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestChatSessionRepository_OrderingAndTouch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db).(*UserRepositoryImpl)
	sessions := NewChatSessionRepository(db)
	owner := seedUser(t, users, "alice", "alice@x.com")

	var ids []uint
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		s := &entity.ChatSession{UserId: owner.Id}
		require.NoError(t, sessions.Create(ctx, s))
		require.NoError(t, db.Model(&model.ChatSession{}).Where("id = ?", s.Id).
			UpdateColumn("updated_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, s.Id)
	}

	list, err := sessions.FindAll(ctx, specification.UserOwnedBy{UserID: owner.Id}, specification.MostRecentlyUpdated{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{ids[2], ids[1], ids[0]}, []uint{list[0].Id, list[1].Id, list[2].Id})

	require.NoError(t, sessions.Touch(ctx, ids[0]))

	list, err = sessions.FindAll(ctx, specification.UserOwnedBy{UserID: owner.Id}, specification.MostRecentlyUpdated{})
	require.NoError(t, err)
	assert.Equal(t, ids[0], list[0].Id)
}

func TestMessageRepository_CreateRejectsBlankContent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	owner := seedUser(t, NewUserRepository(db).(*UserRepositoryImpl), "alice", "alice@x.com")
	session := &entity.ChatSession{UserId: owner.Id}
	require.NoError(t, NewChatSessionRepository(db).Create(ctx, session))

	messages := NewMessageRepository(db)

	err := messages.Create(ctx, &entity.Message{ChatSessionId: session.Id, Content: "   ", IsUser: true})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	stored, err := messages.FindAll(ctx, specification.ByChatSessionID{ChatSessionID: session.Id})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMessageRepository_ChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	owner := seedUser(t, NewUserRepository(db).(*UserRepositoryImpl), "alice", "alice@x.com")
	session := &entity.ChatSession{UserId: owner.Id}
	require.NoError(t, NewChatSessionRepository(db).Create(ctx, session))

	messages := NewMessageRepository(db)
	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		msg := &entity.Message{ChatSessionId: session.Id, Content: content, IsUser: i%2 == 0, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, messages.Create(ctx, msg))
	}

	asc, err := messages.FindAll(ctx, specification.ByChatSessionID{ChatSessionID: session.Id}, specification.Chronological{})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "first", asc[0].Content)
	assert.True(t, asc[0].IsUser)
	assert.Equal(t, "third", asc[2].Content)

	latest, err := messages.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.Chronological{Desc: true},
		specification.Limit{N: 2},
	)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].Content)
	assert.Equal(t, "second", latest[1].Content)
}
