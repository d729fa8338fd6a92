package service

import (
	"errors"
	"time"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

type ITokenService interface {
	Issue(userId uint, username string) (string, error)
	Verify(token string) (*entity.TokenClaims, error)
}

type tokenClaims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) ITokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *tokenService) Issue(userId uint, username string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   userId,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *tokenService) Verify(token string) (*entity.TokenClaims, error) {
	if token == "" {
		return nil, apperror.TokenInvalid("Access token required")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperror.TokenExpired()
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return nil, apperror.New(apperror.KindVerificationFailed, "Token verification failed")
	default:
		return nil, apperror.Wrap(apperror.KindTokenInvalid, "Invalid token", err)
	}

	if claims.UserID == 0 {
		return nil, apperror.TokenInvalid("Invalid token")
	}

	return &entity.TokenClaims{
		UserId:   claims.UserID,
		Username: claims.Username,
	}, nil
}
