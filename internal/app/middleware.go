package app

import (
	httpMW "github.com/yungbote/nsg-intelligence-backend/internal/http/middleware"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth)}
}
