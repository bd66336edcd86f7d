package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

// ChatServiceImpl implements domain.ChatService. It is the single
// coordination point between durable persistence and live broadcast:
// SendMessage always persists first and publishes second, so live delivery
// order per chat equals persistence order.
type ChatServiceImpl struct {
	accountRepo domain.AccountRepository
	chatRepo    domain.ChatRepository
	messageRepo domain.MessageRepository
	broadcaster domain.Broadcaster
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	accountRepo domain.AccountRepository,
	chatRepo domain.ChatRepository,
	messageRepo domain.MessageRepository,
	broadcaster domain.Broadcaster,
	logger *zap.Logger,
) domain.ChatService {
	return &ChatServiceImpl{
		accountRepo: accountRepo,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ListAccounts implements domain.ChatService
func (s *ChatServiceImpl) ListAccounts(ctx context.Context, requesterID uint) ([]*domain.Account, error) {
	return s.accountRepo.FindAllExcept(ctx, requesterID)
}

// GetOrCreateChat implements domain.ChatService. Idempotent under
// concurrent calls from both participants; the repository resolves the
// create race to the surviving row.
func (s *ChatServiceImpl) GetOrCreateChat(ctx context.Context, requesterID, peerID uint) (*domain.Chat, error) {
	if requesterID == peerID {
		return nil, domain.ErrNotParticipant
	}
	if _, err := s.accountRepo.FindByID(ctx, peerID); err != nil {
		return nil, err
	}
	return s.chatRepo.FindOrCreate(ctx, requesterID, peerID)
}

// History implements domain.ChatService
func (s *ChatServiceImpl) History(ctx context.Context, chatID uint) ([]*domain.Message, error) {
	if _, err := s.chatRepo.FindByID(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByChatSorted(ctx, chatID)
}

// SendMessage implements domain.ChatService. The persisted message and the
// broadcast envelope are the same value, so the HTTP response and the
// socket event are structurally identical.
func (s *ChatServiceImpl) SendMessage(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*domain.Message, error) {
	if text == "" && fileURL == "" {
		return nil, domain.ErrEmptyMessage
	}

	chat, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}

	message := &domain.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
		FileURL:  fileURL,
		FileName: fileName,
		ReadBy:   []uint{senderID},
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if err := s.chatRepo.UpdateLastMessage(ctx, chatID, message.ID); err != nil {
		// The message is durable; a stale last-message pointer is the
		// lesser failure and must not block delivery.
		s.logger.Warn("failed to update last message pointer",
			zap.Uint("chat_id", chatID),
			zap.Uint("message_id", message.ID),
			zap.Error(err))
	}

	// Broadcast strictly after the store write.
	s.broadcaster.Publish(chatID, message)

	return message, nil
}

// MarkRead implements domain.ChatService
func (s *ChatServiceImpl) MarkRead(ctx context.Context, messageID, accountID uint) (*domain.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	ok, err := s.chatRepo.IsParticipant(ctx, message.ChatID, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}

	return s.messageRepo.MarkRead(ctx, messageID, accountID)
}
