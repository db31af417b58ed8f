package server

import (
	"context"
	"testing"
	"time"

	"github.com/YardLink/YardLink/internal/common/auth"
	"github.com/YardLink/YardLink/internal/common/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryJWTAuthInterceptorAndRBAC(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "yardlink",
		Audience:  "yardlink",
		RBAC: map[string][]string{
			"/yard.v1.YardService/DeleteTruck": {"admin"},
		},
	}

	// 签发一个 admin token
	tokenStr, _, err := auth.GenerateAccessToken(authCfg, "u-admin-1", []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	chain := UnaryChain(
		UnaryJWTAuthInterceptor(authCfg, nil),
		UnaryRBACInterceptor(authCfg),
	)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tokenStr))
	info := &grpc.UnaryServerInfo{FullMethod: "/yard.v1.YardService/DeleteTruck"}

	handled := false
	_, err = chain(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		handled = true
		ai, ok := AuthFromContext(ctx)
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		if ai.Subject != "u-admin-1" {
			t.Fatalf("subject mismatch: %s", ai.Subject)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected allow, got err=%v", err)
	}
	if !handled {
		t.Fatalf("handler not invoked")
	}

	// 换一个只有 gate 角色的 token，应被 RBAC 拒绝
	tokenStr2, _, err := auth.GenerateAccessToken(authCfg, "u-gate-1", []string{"gate"}, time.Hour)
	if err != nil {
		t.Fatalf("mint token2: %v", err)
	}
	ctx2 := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tokenStr2))

	_, err = chain(ctx2, nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run for denied role")
		return nil, nil
	})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	// 无 token：认证失败
	_, err = chain(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run without token")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	// 配置了 public method 时直接放行
	authCfg.PublicMethods = []string{"/grpc.health.v1.Health/Check"}
	chain2 := UnaryChain(
		UnaryJWTAuthInterceptor(authCfg, nil),
		UnaryRBACInterceptor(authCfg),
	)
	healthInfo := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	if _, err := chain2(context.Background(), nil, healthInfo, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("expected public method to pass, got %v", err)
	}
}
