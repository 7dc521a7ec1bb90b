package auth

import (
	"context"
	"strings"
)

// Service validates bearer tokens issued by the account service.
type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) ValidateAccessToken(_ context.Context, accessToken string) (AccessClaims, error) {
	if s == nil || s.jwt == nil {
		return AccessClaims{}, ErrUnauthorized
	}
	return s.jwt.ParseAccessToken(strings.TrimSpace(accessToken))
}

func (s *Service) IssueAccessToken(userID, email, role string) (string, error) {
	if s == nil || s.jwt == nil {
		return "", ErrUnauthorized
	}
	token, _, err := s.jwt.GenerateAccessToken(userID, email, role)
	return token, err
}
