package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/server"
	"github.com/vango-dev/vtree/pkg/session"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/treefile"
	"github.com/vango-dev/vtree/pkg/vdom"
)

type serveOptions struct {
	configPath string
	treePath   string
	host       string
	port       int
	keyed      bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve --tree FILE",
		Short: "Stream a tree document to WebSocket clients",
		Long: `Serve a tree document over WebSocket.

Every session renders the document, re-reading it on each render. Edit the
file and POST /sessions/{id}/render, or fire any listener, to push the
changes to connected clients as patches.

Settings are read from vtree.json in the working directory, or from the
file given with --config. Flags override the file.

Examples:
  vtree serve --tree app.yaml
  vtree serve --tree app.yaml --port 8080 --keyed
  vtree serve --config prod.json --tree app.yaml`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = opts.host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if cmd.Flags().Changed("keyed") {
				cfg.Diff.Keyed = opts.keyed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, opts.treePath, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to vtree.json")
	cmd.Flags().StringVarP(&opts.treePath, "tree", "t", "", "Tree document to serve (YAML or JSON)")
	cmd.Flags().StringVar(&opts.host, "host", config.DefaultHost, "Host to bind to")
	cmd.Flags().IntVarP(&opts.port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().BoolVarP(&opts.keyed, "keyed", "k", false, "Match children by key")
	cmd.MarkFlagRequired("tree")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, treePath string, logOut io.Writer) error {
	logger := newLogger(cfg.Log, logOut)

	// Reject a broken document before accepting connections.
	if _, err := treefile.DecodeFile(treePath, treefile.NewNamedCallbacks(vdom.NewRegistry())); err != nil {
		return err
	}

	store, err := openStore(cfg.Snapshot)
	if err != nil {
		return err
	}
	defer store.Close()

	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithStore(store),
		session.WithKeyed(cfg.Diff.Keyed),
	}

	srvConfig := &server.Config{
		Address:  cfg.Address(),
		BasePath: cfg.Server.BasePath,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := session.NewMetrics(
			session.WithNamespace(cfg.Metrics.Namespace),
			session.WithRegisterer(reg),
		)
		sessOpts = append(sessOpts, session.WithMetrics(metrics))
		srvConfig.Gatherer = reg
	}

	mgr := session.NewManager(fileAppFactory(treePath, logger), session.ManagerConfig{}, sessOpts...)
	srv := server.New(mgr, srvConfig, server.WithLogger(logger))

	logger.Info("serving tree", "tree", treePath, "address", cfg.Address(),
		"snapshot", cfg.Snapshot.Driver, "keyed", cfg.Diff.Keyed)
	return srv.Run()
}

// loadConfig reads path, or vtree.json in the working directory when path
// is empty. Without either, the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if config.Exists(".") {
		return config.LoadFromDir(".")
	}
	return config.New(), nil
}

// newLogger builds the slog handler described by cfg.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore opens the snapshot store selected by cfg.
func openStore(cfg config.SnapshotConfig) (snapshot.Store, error) {
	switch cfg.Driver {
	case config.DriverBolt:
		store, err := snapshot.OpenBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverS3:
		return snapshot.NewS3Store(newS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
	default:
		return snapshot.NewMemoryStore(), nil
	}
}

func newS3Client(cfg config.SnapshotConfig) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// envCredentials reads static credentials from the standard AWS
// environment variables.
func envCredentials(ctx context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, vterrors.New("E502").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set").
			WithSuggestion("Export AWS credentials or use the memory or bolt snapshot driver")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}, nil
}

// fileApp renders a tree document, re-reading it on every render.
type fileApp struct {
	path      string
	callbacks *treefile.NamedCallbacks
	logger    *slog.Logger
	last      *vdom.Node
}

func fileAppFactory(path string, logger *slog.Logger) session.AppFactory {
	return func(id string, reg *vdom.Registry) session.App {
		log := logger.With("session", id)
		cbs := treefile.NewNamedCallbacks(reg)
		cbs.HandleUnknown(func(name string, payload vdom.Value) {
			log.Info("listener fired", "name", name, "payload", payload.String())
		})
		return &fileApp{path: path, callbacks: cbs, logger: log}
	}
}

// View keeps the last good tree when the document cannot be read.
func (a *fileApp) View() *vdom.Node {
	n, err := treefile.DecodeFile(a.path, a.callbacks)
	if err != nil {
		a.logger.Error("tree document unreadable, keeping last tree", "path", a.path, "error", err)
		return a.last
	}
	a.last = n
	return n
}
