package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/internal/repository/specification"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/pkg/advisory"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
	maxTitleLength  = 50
)

var personalityTypes = []entity.PersonalityType{
	{Id: 1, Name: "Analysts", Code: "NT • INTP • ENTP • ENTJ", Description: "Think critically and strategically, excelling in complex problem-solving and innovation."},
	{Id: 2, Name: "Diplomats", Code: "NF • INFP • ENFP • INFJ", Description: "Focus on human potential and meaningful connections, inspiring positive change."},
	{Id: 3, Name: "Sentinels", Code: "SJ • ISTJ • ISFJ • ESTJ", Description: "Value stability and order, creating reliable systems and maintaining traditions."},
	{Id: 4, Name: "Explorers", Code: "SP • ISTP • ISFP • ESTP", Description: "Embrace spontaneity and adaptability, thriving in dynamic environments."},
}

// CreateMessageResult holds either a plain stored message or a full user/assistant turn.
type CreateMessageResult struct {
	Message *dto.MessageDTO
	Turn    *dto.ChatTurnResponse
}

type IChatService interface {
	GetPersonalityTypes(ctx context.Context) ([]*dto.PersonalityTypeDTO, error)
	CreateChatSession(ctx context.Context, userId uint, req *dto.CreateChatSessionRequest) (*dto.ChatSessionDTO, error)
	GetChatSessions(ctx context.Context, userId uint, req *dto.ListChatSessionsRequest) (*dto.ChatSessionListResponse, error)
	CreateMessage(ctx context.Context, userId uint, req *dto.CreateMessageRequest) (*CreateMessageResult, error)
	GetMessages(ctx context.Context, userId uint, sessionId uint) ([]*dto.MessageDTO, error)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	conversation *conversation
	advisory     advisory.Provider
	publisher    IPublisherService
	logger       logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	cache contract.ConversationContextCache,
	provider advisory.Provider,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		conversation: &conversation{cache: cache, logger: log},
		advisory:     provider,
		publisher:    publisher,
		logger:       log,
	}
}

func (s *chatService) GetPersonalityTypes(ctx context.Context) ([]*dto.PersonalityTypeDTO, error) {
	res := make([]*dto.PersonalityTypeDTO, 0, len(personalityTypes))
	for _, pt := range personalityTypes {
		res = append(res, &dto.PersonalityTypeDTO{
			Id:          pt.Id,
			Name:        pt.Name,
			Code:        pt.Code,
			Description: pt.Description,
		})
	}
	return res, nil
}

func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return nil
	}
	if utf8.RuneCountInString(t) > maxTitleLength {
		t = string([]rune(t)[:maxTitleLength])
	}
	return &t
}

func (s *chatService) CreateChatSession(ctx context.Context, userId uint, req *dto.CreateChatSessionRequest) (*dto.ChatSessionDTO, error) {
	session := &entity.ChatSession{
		UserId: userId,
		Title:  normalizeTitle(req.Title),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return dto.NewChatSessionDTO(session), nil
}

func (s *chatService) GetChatSessions(ctx context.Context, userId uint, req *dto.ListChatSessionsRequest) (*dto.ChatSessionListResponse, error) {
	page, limit := req.Page, req.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	owned := specification.UserOwnedBy{UserID: userId}

	total, err := uow.ChatSessionRepository().Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		owned,
		specification.MostRecentlyUpdated{},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatSessionDTO, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, dto.NewChatSessionDTO(session))
	}

	return &dto.ChatSessionListResponse{
		Sessions: items,
		Pagination: dto.PaginationDTO{
			CurrentPage:   page,
			TotalPages:    int((total + int64(limit) - 1) / int64(limit)),
			TotalSessions: total,
			HasMore:       int64(page*limit) < total,
		},
	}, nil
}

func (s *chatService) CreateMessage(ctx context.Context, userId uint, req *dto.CreateMessageRequest) (*CreateMessageResult, error) {
	if req.IsUser == nil {
		return nil, apperror.Validation("isUser must be a boolean value")
	}
	if req.ChatSessionId == 0 {
		return nil, apperror.Validation("chatSessionId is required for message creation")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.Validation("content is required and cannot be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := ensureSessionOwnership(ctx, uow, userId, req.ChatSessionId); err != nil {
		return nil, err
	}

	if !*req.IsUser {
		msg := &entity.Message{ChatSessionId: req.ChatSessionId, Content: req.Content, IsUser: false}
		if err := uow.MessageRepository().Create(ctx, msg); err != nil {
			return nil, err
		}
		return &CreateMessageResult{Message: dto.NewMessageDTO(msg)}, nil
	}

	// the prompt must not contain the message being asked
	prompt := s.conversation.buildPrompt(ctx, uow, req.ChatSessionId, req.Content)

	result := s.advisory.Ask(ctx, prompt, req.ChatSessionId)
	answer := result.Answer
	if !result.Success {
		s.logger.Warn("CHAT", "advisory failed, storing fallback reply", map[string]interface{}{
			"session_id": req.ChatSessionId,
			"failure":    string(result.Failure),
			"reason":     result.Reason,
		})
		answer = FallbackMessage
	}

	userMsg := &entity.Message{ChatSessionId: req.ChatSessionId, Content: req.Content, IsUser: true}
	aiMsg := &entity.Message{ChatSessionId: req.ChatSessionId, Content: answer, IsUser: false}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, aiMsg); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().Touch(ctx, req.ChatSessionId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.conversation.record(ctx, userMsg, aiMsg)
	s.publishTurn(ctx, userId, userMsg, aiMsg, !result.Success, result.ResponseTime)

	return &CreateMessageResult{
		Turn: &dto.ChatTurnResponse{
			UserMessage: dto.NewMessageDTO(userMsg),
			AiResponse:  dto.NewMessageDTO(aiMsg),
		},
	}, nil
}

func (s *chatService) GetMessages(ctx context.Context, userId uint, sessionId uint) ([]*dto.MessageDTO, error) {
	if sessionId == 0 {
		return nil, apperror.Validation("Invalid session id")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := ensureSessionOwnership(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.Chronological{},
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.conversation.reseed(ctx, uow, sessionId); err != nil {
		s.logger.Warn("CONTEXT", "context reseed failed", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
	}

	return dto.NewMessageDTOs(messages), nil
}

func (s *chatService) publishTurn(ctx context.Context, userId uint, userMsg, aiMsg *entity.Message, fallback bool, upstream time.Duration) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishChatTurn(ctx, dto.PublishChatTurnMessage{
		ChatSessionId: userMsg.ChatSessionId,
		UserId:        userId,
		UserMessageId: userMsg.Id,
		AiMessageId:   aiMsg.Id,
		Fallback:      fallback,
		UpstreamMs:    upstream.Milliseconds(),
		OccurredAt:    time.Now(),
	})
	if err != nil {
		s.logger.Warn("CHAT", "failed to publish chat turn", map[string]interface{}{"error": err.Error()})
	}
}
