package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/config"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/logger"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/repository"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/security"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/service"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/token"
)

// sessionctl is the operator tool for session maintenance: listing a
// user's active sessions, revoking a single session or all of a
// user's sessions, and purging expired records.
func main() {
	op := flag.String("op", "", "operation: list, revoke, revoke-user, purge")
	userFlag := flag.String("user", "", "user id (list, revoke-user)")
	sessionFlag := flag.String("session", "", "session id (revoke)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, closeStore, err := repository.NewSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize session store", "error", err)
	}
	defer closeStore()

	codec := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := security.NewBcryptHasher(cfg.Session.BcryptCost)
	svc := service.NewSessionService(codec, store, hasher, cfg.Session.TTL, logger)

	if err := run(ctx, svc, *op, *userFlag, *sessionFlag); err != nil {
		logger.Fatal("operation failed", "op", *op, "error", err)
	}
}

func run(ctx context.Context, svc *service.SessionService, op, userFlag, sessionFlag string) error {
	switch op {
	case "list":
		userID, err := uuid.Parse(userFlag)
		if err != nil {
			return fmt.Errorf("failed to parse user id: %w", err)
		}

		sessions, err := svc.ListActiveSessions(ctx, userID)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("no active sessions")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s\t%s\t%s\texpires %s\n", s.ID, s.UserAgent, s.IP, s.ExpiresAt.Format(time.RFC3339))
		}
		return nil

	case "revoke":
		id, err := uuid.Parse(sessionFlag)
		if err != nil {
			return fmt.Errorf("failed to parse session id: %w", err)
		}

		revoked, err := svc.RevokeSession(ctx, id)
		if err != nil {
			return err
		}

		if revoked {
			fmt.Println("session revoked")
		} else {
			fmt.Println("nothing to revoke")
		}
		return nil

	case "revoke-user":
		userID, err := uuid.Parse(userFlag)
		if err != nil {
			return fmt.Errorf("failed to parse user id: %w", err)
		}

		count, err := svc.RevokeAllSessions(ctx, userID)
		if err != nil {
			return err
		}

		fmt.Printf("revoked %d sessions\n", count)
		return nil

	case "purge":
		count, err := svc.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("purged %d expired sessions\n", count)
		return nil

	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}
