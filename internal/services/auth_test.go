package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/ctxutil"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", "nsg", time.Hour)
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, 0)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.UserID(ctx); got != userID {
		t.Fatalf("user id: got %s want %s", got, userID)
	}
	if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.SessionID == uuid.Nil {
		t.Fatalf("expected session id in request data")
	}
}

func TestAuthServiceRejects(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", "nsg", time.Hour)
	other := NewAuthService(logger.Nop(), "other-secret", "nsg", time.Hour)
	userID := uuid.New()

	if _, err := svc.SetContextFromToken(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty token: %v", err)
	}

	forged, _ := other.IssueAccessToken(userID, time.Hour)
	if _, err := svc.SetContextFromToken(context.Background(), forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}

	claims := JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    "nsg",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := svc.SetContextFromToken(context.Background(), expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}

	wrongIssuer := NewAuthService(logger.Nop(), "secret", "someone-else", time.Hour)
	tok, _ := wrongIssuer.IssueAccessToken(userID, time.Hour)
	if _, err := svc.SetContextFromToken(context.Background(), tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: userID.String()})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.SetContextFromToken(context.Background(), unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none: %v", err)
	}
}
