package service

import (
	"context"
	"strings"
	"time"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/pkg/advisory"
)

type IChatbotService interface {
	Ask(ctx context.Context, userId uint, username string, req *dto.AskRequest) (*dto.AskResponse, error)
	Status(ctx context.Context) *dto.ChatbotStatusResponse
	ContextStats(ctx context.Context) (*dto.ContextStatsResponse, error)
}

type chatbotService struct {
	uowFactory   unitofwork.RepositoryFactory
	cache        contract.ConversationContextCache
	conversation *conversation
	advisory     advisory.Provider
	publisher    IPublisherService
	logger       logger.ILogger
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	cache contract.ConversationContextCache,
	provider advisory.Provider,
	publisher IPublisherService,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		uowFactory:   uowFactory,
		cache:        cache,
		conversation: &conversation{cache: cache, logger: log},
		advisory:     provider,
		publisher:    publisher,
		logger:       log,
	}
}

// Ask runs one advisory turn. Nothing is stored unless the upstream answers.
func (s *chatbotService) Ask(ctx context.Context, userId uint, username string, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" || req.ChatSessionId == 0 {
		return nil, apperror.Validation("Question and chatSessionId are required")
	}

	start := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := ensureSessionOwnership(ctx, uow, userId, req.ChatSessionId); err != nil {
		return nil, err
	}

	prompt := s.conversation.buildPrompt(ctx, uow, req.ChatSessionId, withPersonality(question, req.PersonalityType))
	contextDone := time.Now()

	result := s.advisory.Ask(ctx, prompt, req.ChatSessionId)
	upstreamDone := time.Now()
	if !result.Success {
		s.logger.Warn("CHATBOT", "ask failed", map[string]interface{}{
			"session_id": req.ChatSessionId,
			"failure":    string(result.Failure),
			"reason":     result.Reason,
		})
		return nil, apperror.Upstream("Chatbot error", result.Reason).WithFallback(FallbackMessage)
	}

	userMsg := &entity.Message{ChatSessionId: req.ChatSessionId, Content: question, IsUser: true}
	aiMsg := &entity.Message{ChatSessionId: req.ChatSessionId, Content: result.Answer, IsUser: false}

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
	persistDone := time.Now()

	s.conversation.record(ctx, userMsg, aiMsg)
	if s.publisher != nil {
		err := s.publisher.PublishChatTurn(ctx, dto.PublishChatTurnMessage{
			ChatSessionId: req.ChatSessionId,
			UserId:        userId,
			UserMessageId: userMsg.Id,
			AiMessageId:   aiMsg.Id,
			UpstreamMs:    result.ResponseTime.Milliseconds(),
			OccurredAt:    persistDone,
		})
		if err != nil {
			s.logger.Warn("CHATBOT", "failed to publish chat turn", map[string]interface{}{"error": err.Error()})
		}
	}

	timestamp := result.Timestamp
	if timestamp == nil {
		timestamp = persistDone.UTC().Format(time.RFC3339)
	}

	return &dto.AskResponse{
		Question:        question,
		Answer:          result.Answer,
		UserMessage:     dto.NewMessageDTO(userMsg),
		AiMessage:       dto.NewMessageDTO(aiMsg),
		User:            username,
		PersonalityType: req.PersonalityType,
		Timestamp:       timestamp,
		Timings: dto.TimingsDTO{
			ContextMs:      contextDone.Sub(start).Milliseconds(),
			UpstreamMs:     upstreamDone.Sub(contextDone).Milliseconds(),
			PersistMs:      persistDone.Sub(upstreamDone).Milliseconds(),
			TotalMs:        persistDone.Sub(start).Milliseconds(),
			ProcessingTime: result.ProcessingTime,
		},
	}, nil
}

func (s *chatbotService) Status(ctx context.Context) *dto.ChatbotStatusResponse {
	st := s.advisory.CheckStatus(ctx)
	status := st.Status
	if status == "" {
		status = "offline"
		if st.Online {
			status = "online"
		}
	}
	return &dto.ChatbotStatusResponse{
		Status:        status,
		PythonWorking: st.PythonWorking,
		Message:       st.Message,
		ResponseMs:    st.ResponseTime.Milliseconds(),
	}
}

func (s *chatbotService) ContextStats(ctx context.Context) (*dto.ContextStatsResponse, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ContextStatsResponse{
		TotalSessions: stats.TotalSessions,
		Sessions:      stats.Sessions,
		TotalMessages: stats.TotalMessages,
	}, nil
}
