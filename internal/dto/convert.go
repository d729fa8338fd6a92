package dto

import "uny-compass-be/internal/entity"

func NewUserDTO(u *entity.User) UserDTO {
	created := u.CreatedAt
	return UserDTO{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: &created,
	}
}

func NewChatSessionDTO(s *entity.ChatSession) *ChatSessionDTO {
	return &ChatSessionDTO{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func NewMessageDTO(m *entity.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		Id:            m.Id,
		ChatSessionId: m.ChatSessionId,
		Content:       m.Content,
		IsUser:        m.IsUser,
		CreatedAt:     m.CreatedAt,
	}
}

func NewMessageDTOs(messages []*entity.Message) []*MessageDTO {
	res := make([]*MessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, NewMessageDTO(m))
	}
	return res
}
