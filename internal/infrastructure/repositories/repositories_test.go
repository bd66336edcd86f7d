package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wiz0007/WeChat-server/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&DBAccount{}, &DBChat{}, &DBMessage{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	account := &domain.Account{
		Name:         "Test User",
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashed",
	}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if account.ID == 0 {
		t.Fatal("Create() did not backfill the ID")
	}

	found, err := repo.FindByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.Username != "testuser" || found.IsVerified {
		t.Errorf("found account = %+v, want unverified testuser", found)
	}

	byID, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if byID.Email != "test@example.com" {
		t.Errorf("FindByID() email = %q", byID.Email)
	}
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	first := &domain.Account{Name: "A", Username: "usera", Email: "test@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &domain.Account{Name: "B", Username: "userb", Email: "test@example.com", PasswordHash: "h"}
	err := repo.Create(ctx, dup)
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Errorf("Create() duplicate error = %v, want ErrAccountExists", err)
	}
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("FindByEmail() error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountRepository_MarkVerifiedAndUpdatePassword(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	account := &domain.Account{Name: "A", Username: "usera", Email: "test@example.com", PasswordHash: "old"}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}
	if err := repo.UpdatePassword(ctx, account.ID, "new"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	found, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !found.IsVerified {
		t.Error("account not verified after MarkVerified")
	}
	if found.PasswordHash != "new" {
		t.Errorf("password hash = %q, want new", found.PasswordHash)
	}
}

func TestAccountRepository_FindAllExcept(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()

	for i, u := range []string{"alice", "bob", "carol"} {
		account := &domain.Account{
			Name:         u,
			Username:     u,
			Email:        u + "@example.com",
			PasswordHash: "h",
		}
		if err := repo.Create(ctx, account); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	accounts, err := repo.FindAllExcept(ctx, 1)
	if err != nil {
		t.Fatalf("FindAllExcept() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}
	for _, a := range accounts {
		if a.ID == 1 {
			t.Error("excluded account present in result")
		}
	}
}

func TestChatRepository_FindOrCreate(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	chat, err := repo.FindOrCreate(ctx, 2, 1)
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	if chat.ParticipantA != 1 || chat.ParticipantB != 2 {
		t.Errorf("pair = (%d,%d), want normalized (1,2)", chat.ParticipantA, chat.ParticipantB)
	}

	// Reversed argument order addresses the same chat.
	again, err := repo.FindOrCreate(ctx, 1, 2)
	if err != nil {
		t.Fatalf("FindOrCreate() second call error = %v", err)
	}
	if again.ID != chat.ID {
		t.Errorf("second call returned chat %d, want %d", again.ID, chat.ID)
	}

	other, err := repo.FindOrCreate(ctx, 1, 3)
	if err != nil {
		t.Fatalf("FindOrCreate() new pair error = %v", err)
	}
	if other.ID == chat.ID {
		t.Error("distinct pairs share a chat row")
	}
}

func TestChatRepository_ConcurrentFindOrCreate(t *testing.T) {
	// A shared-cache DSN so every connection in the pool sees one database;
	// the plain :memory: DSN gives each connection its own.
	db, err := gorm.Open(sqlite.Open("file:chat_pair_race?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&DBChat{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo := NewChatRepository(db)
	ctx := context.Background()

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat, err := repo.FindOrCreate(ctx, 1, 2)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = chat.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got chat %d, want %d", i, ids[i], ids[0])
		}
	}

	// Losers of the insert race must resolve to the winner's row, never a
	// second one.
	var count int64
	if err := db.Model(&DBChat{}).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("chat rows = %d, want exactly 1", count)
	}
}

func TestChatRepository_IsParticipant(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	chat, err := repo.FindOrCreate(ctx, 1, 2)
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}

	for _, tt := range []struct {
		accountID uint
		want      bool
	}{
		{1, true},
		{2, true},
		{3, false},
	} {
		got, err := repo.IsParticipant(ctx, chat.ID, tt.accountID)
		if err != nil {
			t.Fatalf("IsParticipant(%d) error = %v", tt.accountID, err)
		}
		if got != tt.want {
			t.Errorf("IsParticipant(%d) = %v, want %v", tt.accountID, got, tt.want)
		}
	}
}

func TestChatRepository_UpdateLastMessage(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	chat, err := repo.FindOrCreate(ctx, 1, 2)
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}

	if err := repo.UpdateLastMessage(ctx, chat.ID, 42); err != nil {
		t.Fatalf("UpdateLastMessage() error = %v", err)
	}

	found, err := repo.FindByID(ctx, chat.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.LastMessageID == nil || *found.LastMessageID != 42 {
		t.Errorf("last message = %v, want 42", found.LastMessageID)
	}
}

func TestChatRepository_FindByParticipant(t *testing.T) {
	repo := NewChatRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.FindOrCreate(ctx, 1, 2); err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	if _, err := repo.FindOrCreate(ctx, 1, 3); err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	if _, err := repo.FindOrCreate(ctx, 2, 3); err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}

	chats, err := repo.FindByParticipant(ctx, 1)
	if err != nil {
		t.Fatalf("FindByParticipant() error = %v", err)
	}
	if len(chats) != 2 {
		t.Errorf("chats = %d, want 2", len(chats))
	}
}

func TestMessageRepository_CreateAndSort(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := &domain.Message{ChatID: 1, SenderID: 1, Text: "hello", ReadBy: []uint{1}}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
		if msg.ID == 0 {
			t.Fatal("Create() did not backfill the ID")
		}
	}
	// A message in another chat must not leak into the listing.
	other := &domain.Message{ChatID: 2, SenderID: 1, Text: "elsewhere", ReadBy: []uint{1}}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	messages, err := repo.FindByChatSorted(ctx, 1)
	if err != nil {
		t.Fatalf("FindByChatSorted() error = %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("messages = %d, want 5", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].ID <= messages[i-1].ID {
			t.Errorf("ordering broken at %d: %d after %d", i, messages[i].ID, messages[i-1].ID)
		}
	}
}

func TestMessageRepository_MarkRead(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	msg := &domain.Message{ChatID: 1, SenderID: 1, Text: "hello", ReadBy: []uint{1}}
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := repo.MarkRead(ctx, msg.ID, 2)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if len(updated.ReadBy) != 2 {
		t.Fatalf("ReadBy = %v, want sender and reader", updated.ReadBy)
	}

	// Second call is a no-op; the set never shrinks or duplicates.
	again, err := repo.MarkRead(ctx, msg.ID, 2)
	if err != nil {
		t.Fatalf("MarkRead() repeat error = %v", err)
	}
	if len(again.ReadBy) != 2 {
		t.Errorf("ReadBy after repeat = %v, want unchanged", again.ReadBy)
	}

	_, err = repo.MarkRead(ctx, 999, 2)
	if !errors.Is(err, domain.ErrMessageNotFound) {
		t.Errorf("MarkRead() unknown message error = %v, want ErrMessageNotFound", err)
	}
}
