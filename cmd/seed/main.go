package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cloudstore/internal/config"
	"cloudstore/internal/database"
	"cloudstore/internal/domain/files"
	"cloudstore/internal/domain/folders"
	"cloudstore/internal/domain/shares"
	"cloudstore/internal/events"
	"cloudstore/internal/identity"
	jwtsvc "cloudstore/internal/pkg/jwt"
	"cloudstore/internal/pkg/logger"
	"cloudstore/internal/server"
)

const demoPassword = "demo12345"

type demoFile struct {
	name    string
	body    string
	inDocs  bool
	shareTo string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("", "info")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := database.Migrate(ctx, db, server.Models()...); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	provider := identity.NewLocalProvider(db, tokens, cfg.JWTAccessTTL, cfg.UpstreamTimeout)

	store, err := server.NewStore(ctx, cfg, tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store init failed")
	}

	// Seed data is not interesting to downstream consumers.
	publisher := events.NopPublisher{}

	fileRepo := files.NewRepository(db)
	folderService := folders.NewService(folders.NewRepository(db), publisher, log, cfg.UpstreamTimeout)
	fileService := files.NewService(fileRepo, files.NewIntentRepository(db), store, folderService, publisher, log, files.Config{
		LinkTTL:         cfg.LinkTTL,
		UpstreamTimeout: cfg.UpstreamTimeout,
		MaxUploadSize:   cfg.MaxUploadSize,
	})
	shareService := shares.NewService(shares.NewRepository(db), fileRepo, publisher, log, cfg.UpstreamTimeout)

	alice := ensureUser(ctx, log, provider, "alice@cloudstore.local", "Alice Demo")
	ensureUser(ctx, log, provider, "bob@cloudstore.local", "Bob Demo")

	docs, err := folderService.Create(ctx, alice.ID, "Documents", nil)
	if err != nil {
		log.Fatal().Err(err).Msg("create folder failed")
	}

	seed := []demoFile{
		{name: "welcome.txt", body: "Welcome to cloudstore.\n"},
		{name: "quarterly report.txt", body: "Q3 revenue grew.\n", inDocs: true, shareTo: "bob@cloudstore.local"},
		{name: "notes.md", body: "# Notes\n\n- try search\n- try trash\n", inDocs: true},
	}

	for _, df := range seed {
		in := files.UploadInput{
			Name:        df.name,
			Size:        int64(len(df.body)),
			ContentType: "text/plain",
			Body:        strings.NewReader(df.body),
		}
		if df.inDocs {
			in.FolderID = &docs.ID
		}

		f, err := fileService.Upload(ctx, alice.ID, in)
		if err != nil {
			log.Fatal().Err(err).Str("name", df.name).Msg("upload failed")
		}
		log.Info().Str("file_id", f.ID).Str("name", f.Name).Msg("file seeded")

		if df.shareTo != "" {
			if _, err := shareService.Share(ctx, alice.ID, f.ID, df.shareTo, ""); err != nil {
				log.Fatal().Err(err).Str("file_id", f.ID).Msg("share failed")
			}
		}
	}

	fmt.Printf("seed completed: log in as alice@cloudstore.local / %s\n", demoPassword)
}

func ensureUser(ctx context.Context, log zerolog.Logger, provider identity.Provider, email, fullName string) *identity.User {
	u, err := provider.SignUp(ctx, email, demoPassword, fullName)
	if err == nil {
		log.Info().Str("email", email).Msg("user created")
		return u
	}
	if !errors.Is(err, identity.ErrEmailAlreadyExists) {
		log.Fatal().Err(err).Str("email", email).Msg("sign up failed")
	}

	sess, err := provider.SignInWithPassword(ctx, email, demoPassword)
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("existing user has a different password")
	}
	return sess.User
}
