package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vbonduro/kitchzone/internal/availability"
	"github.com/vbonduro/kitchzone/internal/config"
	"github.com/vbonduro/kitchzone/internal/db"
	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
	"github.com/vbonduro/kitchzone/internal/filestore/local"
	"github.com/vbonduro/kitchzone/internal/filestore/s3"
	"github.com/vbonduro/kitchzone/internal/kv"
	"github.com/vbonduro/kitchzone/internal/localstore"
	"github.com/vbonduro/kitchzone/internal/logging"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/remote/rest"
	"github.com/vbonduro/kitchzone/internal/remote/sqlgateway"
	"github.com/vbonduro/kitchzone/internal/service"
	"github.com/vbonduro/kitchzone/internal/storage"
	"github.com/vbonduro/kitchzone/internal/vision"
	claudevision "github.com/vbonduro/kitchzone/internal/vision/claude"
	"github.com/vbonduro/kitchzone/internal/web"
)

var token string

var rootCmd = &cobra.Command{
	Use:   "kitchzone",
	Short: "kitchzone tracks what is on your kitchen shelves",
	Long: "kitchzone keeps kitchen photos, the zones drawn on them and the items in each zone. " +
		"Records go to the remote backend when it is provisioned and to the on-device store otherwise.",
	SilenceUsage: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token of the signed-in user")
}

// app holds everything wired from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	gateway  remote.Gateway
	fileOpen web.FileOpener
	services web.Services
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, closers: []func(){cleanup}}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	kvCfg := kv.DefaultConfig(cfg.LocalStorePath)
	kvCfg.Logger = logger
	kvdb, err := kv.Open(kvCfg)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := kvdb.Close(); err != nil {
			logger.Error("failed to close local store", "error", err)
		}
	})

	files, err := a.newFileBackend(ctx)
	if err != nil {
		return err
	}
	if err := a.newGateway(files); err != nil {
		return err
	}
	if files == nil {
		files = a.gateway.Files()
	}

	detector := availability.New(a.gateway.Images(), cfg.RemoteTimeout, logger)
	router := service.NewRouter(detector,
		storage.NewRemote(a.gateway, logger),
		storage.NewLocal(localstore.New(kvdb, logger)),
		logger)

	a.services = web.Services{
		Router:  router,
		Images:  service.NewImageService(router, files, newVisionAnalyzer(cfg, logger), logger),
		Zones:   service.NewZoneService(router, logger),
		Items:   service.NewItemService(router, logger),
		Reorder: service.NewReorderService(router, logger),
	}
	return nil
}

// newFileBackend returns nil for FILE_BACKEND=remote; the gateway's own file
// storage is used then.
func (a *app) newFileBackend(ctx context.Context) (filestore.Uploader, error) {
	cfg := a.cfg
	switch cfg.FileBackend {
	case "s3":
		endpoint := cfg.S3Endpoint
		if endpoint == "" && cfg.S3AccountID != "" {
			endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.S3AccountID)
		}
		a.logger.Info("using s3 file backend", "bucket", cfg.StorageBucket)
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.StorageBucket,
			Region:          cfg.S3Region,
			Endpoint:        endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			PublicURL:       cfg.PublicURL,
		})
	case "local":
		fs, err := local.NewFileStore(cfg.PhotoPath, cfg.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		a.fileOpen = fs
		a.logger.Info("using local file backend", "path", cfg.PhotoPath)
		return fs, nil
	default:
		return nil, nil
	}
}

func (a *app) newGateway(files filestore.Uploader) error {
	cfg := a.cfg
	if cfg.RemoteBackend == "rest" {
		client, err := rest.New(rest.Config{
			BaseURL: cfg.RemoteURL,
			APIKey:  cfg.RemoteAPIKey,
			Bucket:  cfg.StorageBucket,
			Timeout: cfg.RemoteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create remote client: %w", err)
		}
		a.logger.Info("using rest remote backend", "url", cfg.RemoteURL)
		a.gateway = client
		return nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() {
		if err := database.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	})
	a.logger.Info("using sql remote backend", "path", cfg.DBPath)
	a.gateway = sqlgateway.New(database, files, ownerTokens(cfg))
	return nil
}

func ownerTokens(cfg *config.Config) map[string]domain.User {
	if cfg.OwnerToken == "" {
		return nil
	}
	return map[string]domain.User{cfg.OwnerToken: {ID: cfg.OwnerID, Email: cfg.OwnerEmail}}
}

func newVisionAnalyzer(cfg *config.Config, logger *slog.Logger) vision.VisionAnalyzer {
	if cfg.ClaudeAPIKey == "" {
		logger.Info("vision suggestions disabled")
		return nil
	}
	logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
	return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel, "")
}

// signIn resolves --token to a user and returns a context carrying it.
func (a *app) signIn(ctx context.Context) (context.Context, domain.User, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return nil, domain.User{}, errors.New("--token is required")
	}
	user, err := a.gateway.Auth().CurrentUser(ctx, tok)
	if err != nil {
		return nil, domain.User{}, fmt.Errorf("failed to sign in: %w", err)
	}
	return remote.WithToken(ctx, tok), user, nil
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
