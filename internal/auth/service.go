package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockledger/stockledger/internal/shared"
)

// Service wraps token authentication rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate checks a presented bearer token against all active hashes.
// Token counts stay small, so the linear scan is acceptable.
func (s *Service) Authenticate(ctx context.Context, token string) (*APIToken, error) {
	if token == "" {
		return nil, shared.ErrInvalidToken
	}
	tokens, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if bcrypt.CompareHashAndPassword([]byte(tokens[i].TokenHash), []byte(token)) == nil {
			_ = s.repo.TouchLastUsed(ctx, tokens[i].ID)
			return &tokens[i], nil
		}
	}
	return nil, shared.ErrInvalidToken
}

// Issue mints a new token, stores its hash, and returns the plaintext once.
func (s *Service) Issue(ctx context.Context, name string) (string, APIToken, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", APIToken{}, err
	}
	plaintext := hex.EncodeToString(raw)
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", APIToken{}, err
	}
	tok, err := s.repo.Create(ctx, name, string(hash))
	if err != nil {
		return "", APIToken{}, err
	}
	return plaintext, tok, nil
}
