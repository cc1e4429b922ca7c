package service

import (
	"context"
	"strings"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports"

	"github.com/rs/zerolog"
)

// WhitelistServiceImpl implements ports.WhitelistService.
type WhitelistServiceImpl struct {
	repo ports.WhitelistRepository
	log  zerolog.Logger
}

// NewWhitelistService creates a new WhitelistServiceImpl.
func NewWhitelistService(repo ports.WhitelistRepository, log zerolog.Logger) *WhitelistServiceImpl {
	return &WhitelistServiceImpl{repo: repo, log: log}
}

// IsWhitelisted reports whether identifier (email or phone) is exempt.
// Identifiers containing '@' are matched as emails; everything else as a
// phone number in any of its 0.../254... forms. Lookup failures fail closed.
func (s *WhitelistServiceImpl) IsWhitelisted(ctx context.Context, identifier string) bool {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return false
	}

	entryType := domain.WhitelistTypePhone
	if domain.IsEmailIdentifier(identifier) {
		entryType = domain.WhitelistTypeEmail
	} else if domain.PhoneDigits(identifier) == "" {
		return false
	}

	entries, err := s.repo.ListActive(ctx, entryType)
	if err != nil {
		s.log.Warn().Err(err).Str("type", string(entryType)).Msg("whitelist lookup failed, treating as not whitelisted")
		return false
	}

	for i := range entries {
		if entries[i].Matches(identifier) {
			s.log.Debug().Str("type", string(entryType)).Msg("whitelist match")
			return true
		}
	}
	return false
}
