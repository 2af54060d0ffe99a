package library

import (
	"gorm.io/gorm"

	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type LibraryItemRepo interface {
	List(dbc dbctx.Context, kind string, limit int) ([]*types.LibraryItem, error)
	Create(dbc dbctx.Context, items []*types.LibraryItem) ([]*types.LibraryItem, error)
}

type libraryItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryItemRepo(db *gorm.DB, baseLog *logger.Logger) LibraryItemRepo {
	return &libraryItemRepo{db: db, log: baseLog.With("repo", "LibraryItemRepo")}
}

func (r *libraryItemRepo) List(dbc dbctx.Context, kind string, limit int) ([]*types.LibraryItem, error) {
	t := dbc.DB(r.db)
	var out []*types.LibraryItem
	q := t.Model(&types.LibraryItem{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("position ASC").Order("title ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryItemRepo) Create(dbc dbctx.Context, items []*types.LibraryItem) ([]*types.LibraryItem, error) {
	t := dbc.DB(r.db)
	if len(items) == 0 {
		return []*types.LibraryItem{}, nil
	}
	if err := t.Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
