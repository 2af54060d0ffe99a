package services

import (
	"context"
	"strings"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos"
	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

const maxLibraryPage = 100

type LibraryService interface {
	List(ctx context.Context, kind string, limit int) ([]*types.LibraryItem, error)
}

type libraryService struct {
	log  *logger.Logger
	repo repos.LibraryItemRepo
}

func NewLibraryService(baseLog *logger.Logger, repo repos.LibraryItemRepo) LibraryService {
	return &libraryService{log: baseLog.With("service", "LibraryService"), repo: repo}
}

func (s *libraryService) List(ctx context.Context, kind string, limit int) ([]*types.LibraryItem, error) {
	if limit <= 0 || limit > maxLibraryPage {
		limit = maxLibraryPage
	}
	return s.repo.List(dbctx.Context{Ctx: ctx}, strings.ToLower(strings.TrimSpace(kind)), limit)
}
