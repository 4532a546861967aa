package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftnest/teamforge-backend/internal/config"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Login(ctx context.Context, username, password string) (*repository.Member, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(token string) (*jwt.Token, error)
	GetMemberIDFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	cfg        *config.Config
	memberRepo repository.MemberRepository
}

func NewAuthService(cfg *config.Config, memberRepo repository.MemberRepository) AuthService {
	return &authService{cfg: cfg, memberRepo: memberRepo}
}

func (s *authService) Login(ctx context.Context, username, password string) (*repository.Member, string, string, error) {
	member, err := s.memberRepo.FindByUsername(ctx, username)
	if err != nil || member == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	// Pending and suspended members cannot sign in.
	if member.Status != types.MemberActive {
		return nil, "", "", ErrPermissionDenied
	}

	s.memberRepo.UpdateLastActive(ctx, member.ID)

	accessToken, refreshToken, err := s.generateTokens(ctx, member.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return member, accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.memberRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return "", "", ErrInvalidToken
	}

	if time.Now().After(rt.ExpiresAt) {
		s.memberRepo.DeleteRefreshToken(ctx, refreshToken)
		return "", "", ErrInvalidToken
	}

	member, err := s.memberRepo.FindByID(ctx, rt.MemberID)
	if err != nil || member == nil || member.Status != types.MemberActive {
		s.memberRepo.DeleteRefreshToken(ctx, refreshToken)
		return "", "", ErrInvalidToken
	}

	s.memberRepo.DeleteRefreshToken(ctx, refreshToken)
	s.memberRepo.UpdateLastActive(ctx, rt.MemberID)

	accessToken, newRefreshToken, err := s.generateTokens(ctx, rt.MemberID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.memberRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetMemberIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	memberID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return memberID, nil
}

func (s *authService) generateTokens(ctx context.Context, memberID string) (string, string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": memberID,
		"exp": time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": time.Now().Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenString := uuid.New().String()
	refreshTokenExpiry := time.Now().Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry))

	rt := &repository.RefreshToken{
		Token:     refreshTokenString,
		MemberID:  memberID,
		ExpiresAt: refreshTokenExpiry,
	}

	if err := s.memberRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}
