package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waylines/waylines/config"
	"github.com/waylines/waylines/db"
	apiError "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *db.GormDB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return &db.GormDB{DB: gdb}
}

func createUser(t *testing.T, gdb *db.GormDB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Fullname:       username,
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "x",
		IsEmailActive:  true,
	}
	require.NoError(t, gdb.DB.Create(user).Error)
	return user
}

func newTestChatService(t *testing.T) (ChatService, db.ChatRepository, *db.GormDB) {
	t.Helper()
	gdb := testDB(t)
	chatRepo := db.NewChatRepo(gdb)
	authRepo := db.NewAuthRepo(gdb)
	svc := NewChatService(chatRepo, authRepo, NewDashboardCache(nil), NewFCMNotifier(nil), &config.Config{})
	return svc, chatRepo, gdb
}

func TestValidateMessageBounds(t *testing.T) {
	atLimit := strings.Repeat("a", models.MaxMessageLength)
	got, err := ValidateMessage(atLimit)
	assert.NoError(t, err)
	assert.Equal(t, atLimit, got)

	_, err = ValidateMessage(atLimit + "a")
	assert.ErrorIs(t, err, apiError.ErrMessageTooLong)

	_, err = ValidateMessage("   \t\n  ")
	assert.ErrorIs(t, err, apiError.ErrEmptyMessage)

	_, err = ValidateMessage("")
	assert.ErrorIs(t, err, apiError.ErrEmptyMessage)

	got, err = ValidateMessage("  hello  ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestSendPrivateMessageRejectsInvalidWithoutPersisting(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendPrivateMessage(conversation.ID, alice.ID, strings.Repeat("a", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, apiError.ErrMessageTooLong)

	_, err = svc.SendPrivateMessage(conversation.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, apiError.ErrEmptyMessage)

	var count int64
	gdb.DB.Model(&models.PrivateMessage{}).Count(&count)
	assert.Zero(t, count)
}

func TestSendPrivateMessageBumpsConversationTimestamp(t *testing.T) {
	svc, chatRepo, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	before := conversation.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	message, err := svc.SendPrivateMessage(conversation.ID, alice.ID, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", message.Content)
	assert.Equal(t, alice.ID, message.SenderID)
	assert.Equal(t, "alice", message.Sender.Username)
	assert.False(t, message.IsRead)

	updated, err := chatRepo.FindConversationByID(conversation.ID)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestSendPrivateMessageRequiresParticipant(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	eve := createUser(t, gdb, "eve")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendPrivateMessage(conversation.ID, eve.ID, "let me in")
	assert.ErrorIs(t, err, apiError.ErrForbidden)
}

func TestPrivateHistoryReturnsMostRecentFiftyAscending(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	total := HistoryLimit + 10
	for i := 1; i <= total; i++ {
		_, err := svc.SendPrivateMessage(conversation.ID, alice.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	messages, err := svc.PrivateHistory(conversation.ID, HistoryLimit)
	require.NoError(t, err)
	require.Len(t, messages, HistoryLimit)

	// the snapshot holds the newest 50 in chronological order
	assert.Equal(t, "message 11", messages[0].Content)
	assert.Equal(t, fmt.Sprintf("message %d", total), messages[len(messages)-1].Content)
	for i := 1; i < len(messages); i++ {
		assert.Less(t, messages[i-1].ID, messages[i].ID)
	}
}

func TestMarkReadFlipsOnlyPeerMessages(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	fromBob, err := svc.SendPrivateMessage(conversation.ID, bob.ID, "from bob")
	require.NoError(t, err)
	fromAlice, err := svc.SendPrivateMessage(conversation.ID, alice.ID, "from alice")
	require.NoError(t, err)

	require.NoError(t, svc.MarkConversationRead(conversation.ID, alice.ID))

	var got models.PrivateMessage
	require.NoError(t, gdb.DB.First(&got, fromBob.ID).Error)
	assert.True(t, got.IsRead)
	got = models.PrivateMessage{}
	require.NoError(t, gdb.DB.First(&got, fromAlice.ID).Error)
	assert.False(t, got.IsRead, "own messages stay untouched")
}

func TestConversationPairIsUnique(t *testing.T) {
	_, chatRepo, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	first, err := chatRepo.GetOrCreateConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	// same pair in reversed order maps to the same conversation
	second, err := chatRepo.GetOrCreateConversation(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	gdb.DB.Model(&models.Conversation{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartConversationWithSelfRejected(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")

	_, _, err := svc.StartConversation(alice.ID, alice.ID)
	require.Error(t, err)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
}

func TestSendRouteMessagePersists(t *testing.T) {
	svc, chatRepo, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	route := &models.Route{AuthorID: alice.ID, Name: "Old Town Walk", Privacy: models.PrivacyPublic}
	require.NoError(t, gdb.DB.Create(route).Error)

	message, err := svc.SendRouteMessage(route.ID, alice.ID, "Nice!")
	require.NoError(t, err)
	assert.Equal(t, "Nice!", message.Message)
	assert.Equal(t, alice.ID, message.UserID)

	history, err := svc.RouteHistory(route.ID, HistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, message.ID, history[0].ID)

	// the chat record was created lazily for a route without one
	chat, err := chatRepo.GetOrCreateRouteChat(route.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, message.RouteChatID)
}

func TestDashboardSummaries(t *testing.T) {
	svc, _, gdb := newTestChatService(t)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	conversation, _, err := svc.StartConversation(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SendPrivateMessage(conversation.ID, bob.ID, "unread one")
	require.NoError(t, err)
	_, err = svc.SendPrivateMessage(conversation.ID, bob.ID, "unread two")
	require.NoError(t, err)

	route := &models.Route{AuthorID: alice.ID, Name: "Harbor Loop", Privacy: models.PrivacyPublic}
	require.NoError(t, gdb.DB.Create(route).Error)
	chat := &models.RouteChat{RouteID: route.ID, IsActive: true}
	require.NoError(t, gdb.DB.Create(chat).Error)
	_, err = svc.SendRouteMessage(route.ID, bob.ID, "great route")
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(alice.ID)
	require.NoError(t, err)
	require.Len(t, dashboard.Conversations, 1)
	assert.Equal(t, bob.ID, dashboard.Conversations[0].OtherUser.ID)
	assert.EqualValues(t, 2, dashboard.Conversations[0].UnreadCount)
	require.NotNil(t, dashboard.Conversations[0].LastMessage)
	assert.Equal(t, "unread two", dashboard.Conversations[0].LastMessage.Content)

	require.Len(t, dashboard.RouteChats, 1)
	assert.Equal(t, route.ID, dashboard.RouteChats[0].RouteID)
	assert.Equal(t, "Harbor Loop", dashboard.RouteChats[0].RouteName)
	assert.EqualValues(t, 1, dashboard.RouteChats[0].MessageCount)
}
