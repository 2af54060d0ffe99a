package domain

import (
	"github.com/yungbote/nsg-intelligence-backend/internal/domain/library"
	"github.com/yungbote/nsg-intelligence-backend/internal/domain/user"
)

type OnboardingStatus = user.OnboardingStatus
type StrategyPreferences = user.StrategyPreferences
type LibraryItem = library.LibraryItem

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&OnboardingStatus{},
		&StrategyPreferences{},
		&LibraryItem{},
	}
}
