package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wiz0007/WeChat-server/domain"
)

// ChatRepositoryImpl implements domain.ChatRepository using GORM
type ChatRepositoryImpl struct {
	db *gorm.DB
}

// DBChat represents the database model for Chat. The composite unique index
// on the normalized participant pair is the serialization point for the
// concurrent find-or-create race: at most one row can exist per pair.
type DBChat struct {
	ID            uint  `gorm:"primaryKey"`
	ParticipantA  uint  `gorm:"uniqueIndex:idx_chat_pair;index"`
	ParticipantB  uint  `gorm:"uniqueIndex:idx_chat_pair;index"`
	LastMessageID *uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (DBChat) TableName() string {
	return "chats"
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) domain.ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

// normalizePair orders the unordered participant pair so (a,b) and (b,a)
// address the same row.
func normalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// FindOrCreate implements domain.ChatRepository. If two concurrent calls
// race on the same pair, the loser's insert hits the unique index and
// resolves to a fetch of the winner instead of an error.
func (r *ChatRepositoryImpl) FindOrCreate(ctx context.Context, accountA, accountB uint) (*domain.Chat, error) {
	a, b := normalizePair(accountA, accountB)

	var dbChat DBChat
	err := r.db.WithContext(ctx).Where("participant_a = ? AND participant_b = ?", a, b).First(&dbChat).Error
	if err == nil {
		return r.dbToDomain(&dbChat), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dbChat = DBChat{ParticipantA: a, ParticipantB: b}
	if createErr := r.db.WithContext(ctx).Create(&dbChat).Error; createErr != nil {
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Lost the race; the winner's row exists now.
			if err := r.db.WithContext(ctx).Where("participant_a = ? AND participant_b = ?", a, b).First(&dbChat).Error; err != nil {
				return nil, err
			}
			return r.dbToDomain(&dbChat), nil
		}
		return nil, createErr
	}
	return r.dbToDomain(&dbChat), nil
}

// FindByID implements domain.ChatRepository
func (r *ChatRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Chat, error) {
	var dbChat DBChat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbChat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbChat), nil
}

// FindByParticipant implements domain.ChatRepository. Chats are ordered by
// most recent activity for list rendering.
func (r *ChatRepositoryImpl) FindByParticipant(ctx context.Context, accountID uint) ([]*domain.Chat, error) {
	var dbChats []DBChat
	err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", accountID, accountID).
		Order("updated_at desc").
		Find(&dbChats).Error
	if err != nil {
		return nil, err
	}

	chats := make([]*domain.Chat, 0, len(dbChats))
	for i := range dbChats {
		chats = append(chats, r.dbToDomain(&dbChats[i]))
	}
	return chats, nil
}

// UpdateLastMessage implements domain.ChatRepository
func (r *ChatRepositoryImpl) UpdateLastMessage(ctx context.Context, chatID, messageID uint) error {
	return r.db.WithContext(ctx).Model(&DBChat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"updated_at":      time.Now(),
		}).Error
}

// IsParticipant implements domain.ChatRepository
func (r *ChatRepositoryImpl) IsParticipant(ctx context.Context, chatID, accountID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBChat{}).
		Where("id = ? AND (participant_a = ? OR participant_b = ?)", chatID, accountID, accountID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// dbToDomain converts database chat to domain chat
func (r *ChatRepositoryImpl) dbToDomain(dbChat *DBChat) *domain.Chat {
	return &domain.Chat{
		ID:            dbChat.ID,
		ParticipantA:  dbChat.ParticipantA,
		ParticipantB:  dbChat.ParticipantB,
		LastMessageID: dbChat.LastMessageID,
		CreatedAt:     dbChat.CreatedAt,
		UpdatedAt:     dbChat.UpdatedAt,
	}
}
