package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wiz0007/WeChat-server/domain"
)

// MessageRepositoryImpl implements domain.MessageRepository using GORM
type MessageRepositoryImpl struct {
	db *gorm.DB
}

// DBMessage represents the database model for Message. ReadBy is stored as
// a JSON array; it only ever grows.
type DBMessage struct {
	ID        uint      `gorm:"primaryKey"`
	ChatID    uint      `gorm:"index:idx_msg_chat_created,priority:1"`
	SenderID  uint      `gorm:"index"`
	Text      string    `gorm:"type:text"`
	FileURL   string    `gorm:"size:512"`
	FileName  string    `gorm:"size:255"`
	ReadBy    []uint    `gorm:"serializer:json"`
	CreatedAt time.Time `gorm:"index:idx_msg_chat_created,priority:2"`
}

// TableName returns the table name for GORM
func (DBMessage) TableName() string {
	return "messages"
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) domain.MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

// Create implements domain.MessageRepository
func (r *MessageRepositoryImpl) Create(ctx context.Context, message *domain.Message) error {
	dbMessage := r.domainToDB(message)
	if err := r.db.WithContext(ctx).Create(dbMessage).Error; err != nil {
		return err
	}
	message.ID = dbMessage.ID
	message.CreatedAt = dbMessage.CreatedAt
	return nil
}

// FindByChatSorted implements domain.MessageRepository. Insertion order is
// the effective chat ordering; the id tiebreak keeps same-timestamp rows
// stable.
func (r *MessageRepositoryImpl) FindByChatSorted(ctx context.Context, chatID uint) ([]*domain.Message, error) {
	var dbMessages []DBMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc").
		Order("id asc").
		Find(&dbMessages).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, 0, len(dbMessages))
	for i := range dbMessages {
		messages = append(messages, r.dbToDomain(&dbMessages[i]))
	}
	return messages, nil
}

// FindByID implements domain.MessageRepository
func (r *MessageRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	var dbMessage DBMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbMessage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbMessage), nil
}

// MarkRead implements domain.MessageRepository as a read-modify-write so
// ReadBy stays monotonically non-decreasing. Adding an id twice is a no-op.
func (r *MessageRepositoryImpl) MarkRead(ctx context.Context, messageID, accountID uint) (*domain.Message, error) {
	var dbMessage DBMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", messageID).First(&dbMessage).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMessageNotFound
			}
			return err
		}
		for _, id := range dbMessage.ReadBy {
			if id == accountID {
				return nil
			}
		}
		dbMessage.ReadBy = append(dbMessage.ReadBy, accountID)
		return tx.Model(&DBMessage{}).Where("id = ?", messageID).Update("read_by", dbMessage.ReadBy).Error
	})
	if err != nil {
		return nil, err
	}
	return r.dbToDomain(&dbMessage), nil
}

// domainToDB converts domain message to database message
func (r *MessageRepositoryImpl) domainToDB(message *domain.Message) *DBMessage {
	return &DBMessage{
		ID:       message.ID,
		ChatID:   message.ChatID,
		SenderID: message.SenderID,
		Text:     message.Text,
		FileURL:  message.FileURL,
		FileName: message.FileName,
		ReadBy:   message.ReadBy,
	}
}

// dbToDomain converts database message to domain message
func (r *MessageRepositoryImpl) dbToDomain(dbMessage *DBMessage) *domain.Message {
	return &domain.Message{
		ID:        dbMessage.ID,
		ChatID:    dbMessage.ChatID,
		SenderID:  dbMessage.SenderID,
		Text:      dbMessage.Text,
		FileURL:   dbMessage.FileURL,
		FileName:  dbMessage.FileName,
		ReadBy:    dbMessage.ReadBy,
		CreatedAt: dbMessage.CreatedAt,
	}
}
