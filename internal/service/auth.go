package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
)

const tokenTTL = time.Hour

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// TokenClaims is the identity a participant token carries: which player it
// speaks for, in which game.
type TokenClaims struct {
	GameID   string
	PlayerID string
}

type TokenService interface {
	Generate(gameID, playerID string) (string, error)
	Parse(tokenString string) (*TokenClaims, error)
}

type tokenService struct {
	secretKey string
}

func NewTokenService(secretKey string) TokenService {
	return &tokenService{
		secretKey: secretKey,
	}
}

func (that *tokenService) Generate(gameID, playerID string) (string, error) {
	claims := jwt.MapClaims{
		"game_id":   gameID,
		"player_id": playerID,
		"exp":       time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *tokenService) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnexpectedSigningMethod, token.Header["alg"])
		}

		return []byte(that.secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	gameID, ok := claims["game_id"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	playerID, ok := claims["player_id"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return &TokenClaims{GameID: gameID, PlayerID: playerID}, nil
}
