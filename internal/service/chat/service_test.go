package chat_test

import (
	"context"
	"testing"

	chatmodel "github.com/zhouzirui/kairn/backend/internal/model/chat"
	chat "github.com/zhouzirui/kairn/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.Mount(ctx, chatmodel.Surface{SessionID: "s-1"})
	if err != nil {
		t.Fatalf("Mount err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != "s-1" {
		t.Fatalf("unexpected session ID: got %s want s-1", got.ID)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceMountRequiresID(t *testing.T) {
	svc := chat.NewService()
	if _, err := svc.Mount(context.Background(), chatmodel.Surface{}); err != chat.ErrSessionIDRequired {
		t.Fatalf("expected ErrSessionIDRequired, got %v", err)
	}
}

func TestServiceMountTwice(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	if _, err := svc.Mount(ctx, chatmodel.Surface{SessionID: "dup"}); err != nil {
		t.Fatalf("Mount err: %v", err)
	}
	if _, err := svc.Mount(ctx, chatmodel.Surface{SessionID: "dup"}); err != chat.ErrSessionExists {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestServiceUnmount(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	if _, err := svc.Mount(ctx, chatmodel.Surface{SessionID: "s-1"}); err != nil {
		t.Fatalf("Mount err: %v", err)
	}

	if err := svc.Unmount(ctx, "s-1"); err != nil {
		t.Fatalf("Unmount err: %v", err)
	}
	if _, err := svc.LoadTranscript(ctx, "s-1"); err != chat.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Unmount(ctx, "s-1"); err != chat.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
