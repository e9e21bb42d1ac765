package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

// recordingNotifier captures push notifications instead of a live hub.
type recordingNotifier struct {
	messages []*model.Message
}

func (n *recordingNotifier) NotifyNewMessage(message *model.Message) {
	n.messages = append(n.messages, message)
}

type inboxServiceFixture struct {
	inboxService InboxService
	notifier     *recordingNotifier
	user         *model.User
	admin        *model.Admin
	otherAdmin   *model.Admin
	db           *gorm.DB
}

func setupInboxServiceTest(t *testing.T) *inboxServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	notifier := &recordingNotifier{}
	inboxService := NewInboxService(repository.NewMessageRepository(testDB), notifier)

	user := &model.User{Email: "customer@example.com", PasswordHash: "hash", Name: "Test Customer"}
	require.NoError(t, testDB.Create(user).Error)

	admin := &model.Admin{Email: "admin@example.com", PasswordHash: "hash", Name: "First Admin"}
	require.NoError(t, testDB.Create(admin).Error)

	otherAdmin := &model.Admin{Email: "admin2@example.com", PasswordHash: "hash", Name: "Second Admin"}
	require.NoError(t, testDB.Create(otherAdmin).Error)

	return &inboxServiceFixture{
		inboxService: inboxService,
		notifier:     notifier,
		user:         user,
		admin:        admin,
		otherAdmin:   otherAdmin,
		db:           testDB,
	}
}

func TestInboxService_SendFromUser(t *testing.T) {
	f := setupInboxServiceTest(t)

	message, err := f.inboxService.SendFromUser(f.user.ID, "Is the shop open today?")

	assert.NoError(t, err)
	assert.NotZero(t, message.ID)
	assert.Equal(t, model.DirectionUserToAdmin, message.Direction)
	assert.Nil(t, message.AdminID)
	assert.Len(t, f.notifier.messages, 1)
}

func TestInboxService_SendFromUser_Empty(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.notifier.messages)
}

func TestInboxService_Assign_FirstComeFirstServed(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "Hello")
	require.NoError(t, err)

	assignment, err := f.inboxService.Assign(f.admin.ID, f.user.ID)
	assert.NoError(t, err)
	assert.Equal(t, f.admin.ID, assignment.AdminID)

	// The second admin loses the race.
	_, err = f.inboxService.Assign(f.otherAdmin.ID, f.user.ID)
	assert.ErrorIs(t, err, ErrAssignedElsewhere)

	// Re-claiming by the holder is a no-op.
	again, err := f.inboxService.Assign(f.admin.ID, f.user.ID)
	assert.NoError(t, err)
	assert.Equal(t, assignment.ID, again.ID)
}

func TestInboxService_Assign_BackfillsUnassignedMessages(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "First")
	require.NoError(t, err)
	_, err = f.inboxService.SendFromUser(f.user.ID, "Second")
	require.NoError(t, err)

	_, err = f.inboxService.Assign(f.admin.ID, f.user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.Message{}).
		Where("user_id = ? AND admin_id = ?", f.user.ID, f.admin.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInboxService_SendFromAdmin(t *testing.T) {
	f := setupInboxServiceTest(t)

	message, err := f.inboxService.SendFromAdmin(f.admin.ID, f.user.ID, "We open at 8am.")

	assert.NoError(t, err)
	assert.Equal(t, model.DirectionAdminToUser, message.Direction)
	require.NotNil(t, message.AdminID)
	assert.Equal(t, f.admin.ID, *message.AdminID)
	assert.Len(t, f.notifier.messages, 1)
}

func TestInboxService_SendFromAdmin_AssignedElsewhere(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.Assign(f.admin.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.inboxService.SendFromAdmin(f.otherAdmin.ID, f.user.ID, "Hello")
	assert.ErrorIs(t, err, ErrAssignedElsewhere)
}

func TestInboxService_SendFromAdmin_Empty(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromAdmin(f.admin.ID, f.user.ID, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestInboxService_AdminThreads_HidesForeignAssignments(t *testing.T) {
	f := setupInboxServiceTest(t)

	secondUser := &model.User{Email: "customer2@example.com", PasswordHash: "hash", Name: "Second Customer"}
	require.NoError(t, f.db.Create(secondUser).Error)

	_, err := f.inboxService.SendFromUser(f.user.ID, "Hello from the first customer")
	require.NoError(t, err)
	_, err = f.inboxService.SendFromUser(secondUser.ID, "Hello from the second customer")
	require.NoError(t, err)

	_, err = f.inboxService.Assign(f.otherAdmin.ID, secondUser.ID)
	require.NoError(t, err)

	threads, err := f.inboxService.AdminThreads(f.admin.ID)
	assert.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, f.user.ID, threads[0].UserID)
	assert.True(t, threads[0].HasUnread)
	assert.Nil(t, threads[0].AssignedTo)

	threads, err = f.inboxService.AdminThreads(f.otherAdmin.ID)
	assert.NoError(t, err)
	require.Len(t, threads, 2)
}

func TestInboxService_AdminThread_MarksRead(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "Hello")
	require.NoError(t, err)

	messages, err := f.inboxService.AdminThread(f.admin.ID, f.user.ID)
	assert.NoError(t, err)
	require.Len(t, messages, 1)

	var unread int64
	require.NoError(t, f.db.Model(&model.Message{}).
		Where("user_id = ? AND is_read = ?", f.user.ID, false).
		Count(&unread).Error)
	assert.Zero(t, unread)
}

func TestInboxService_AdminThread_AssignedElsewhere(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "Hello")
	require.NoError(t, err)
	_, err = f.inboxService.Assign(f.admin.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.inboxService.AdminThread(f.otherAdmin.ID, f.user.ID)
	assert.ErrorIs(t, err, ErrAssignedElsewhere)
}

func TestInboxService_UserThread_Ordering(t *testing.T) {
	f := setupInboxServiceTest(t)

	_, err := f.inboxService.SendFromUser(f.user.ID, "First")
	require.NoError(t, err)
	_, err = f.inboxService.SendFromAdmin(f.admin.ID, f.user.ID, "Second")
	require.NoError(t, err)

	messages, err := f.inboxService.UserThread(f.user.ID)
	assert.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "First", messages[0].Body)
	assert.Equal(t, "Second", messages[1].Body)
}
