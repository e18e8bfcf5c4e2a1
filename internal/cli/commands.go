package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/cache"
	"github.com/aewiki/recap-cli/internal/config"
	"github.com/aewiki/recap-cli/internal/core"
	"github.com/aewiki/recap-cli/internal/index"
	"github.com/aewiki/recap-cli/internal/output"
	"github.com/aewiki/recap-cli/internal/recap"
	"github.com/aewiki/recap-cli/internal/server"
	"github.com/aewiki/recap-cli/internal/store"
)

func init() {
	// Add all subcommands
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	cacheCmd.AddCommand(cacheEvictCmd)
	cacheCmd.AddCommand(cachePathCmd)

	showCmd.Flags().String("date", "", "Date to show (YYYY-MM-DD), same as the positional argument")
	serveCmd.Flags().String("listen", "", "Listen address (default from RECAP_LISTEN_ADDR)")
}

// showCmd renders the leaderboard for a date
var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the contributor leaderboard for a date (default: most recent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  handleShow,
}

// datesCmd lists all dates with a known recap
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List all dates with an available recap",
	RunE:  handleDates,
}

// latestCmd prints the most recent available date
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent date with an available recap",
	RunE:  handleLatest,
}

// cacheCmd groups cache maintenance subcommands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local snapshot cache",
}

var cacheEvictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Evict the oldest quarter of cached snapshots",
	RunE:  handleCacheEvict,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache storage location",
	RunE:  handleCachePath,
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recap snapshots over HTTP",
	RunE:  handleServe,
}

// mcpCmd starts the MCP server
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI integration",
	RunE:  handleMCP,
}

// deps bundles the wired service graph for a command invocation.
type deps struct {
	cfg     config.Config
	store   store.Store
	cache   *cache.Cache
	service *recap.Service
}

// buildDeps loads configuration and wires the store, cache, index and
// fetch service together.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.ListingURL, cfg.SnapshotBaseURL, cfg.HTTPTimeout, verbose)
	c := cache.New(st, verbose)
	ix := index.New(client, st, cfg.FreshnessWindow, verbose)

	return &deps{
		cfg:     cfg,
		store:   st,
		cache:   c,
		service: recap.New(client, c, ix, verbose),
	}, nil
}

// openStore constructs the durable store for the configured backend.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return store.NewRedisStore(store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)), nil

	case config.BackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		)
		if err != nil {
			return nil, err
		}
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		})
		return store.NewS3Store(cfg.S3Bucket, s3Client), nil

	default:
		return store.NewFilesystemStore(cfg.CacheDir), nil
	}
}

// showOverride picks the requested date: the --date flag wins, then the
// positional argument, then empty (resolve to the most recent).
func showOverride(cmd *cobra.Command, args []string) string {
	if flagDate, _ := cmd.Flags().GetString("date"); flagDate != "" {
		return flagDate
	}
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func handleShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	date := d.service.ResolveInitialDate(ctx, showOverride(cmd, args))
	core.ProgressPrint(fmt.Sprintf("Loading recap for %s…", core.DisplayDate(date)), quiet)

	snap, err := d.service.Fetch(ctx, date)
	if errors.Is(err, recap.ErrNotAvailable) {
		fmt.Printf("No recap data available for %s.\n", core.DisplayDate(date))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load recap for %s: %w", date, err)
	}

	if raw {
		output.PrintJSON(map[string]interface{}{"date": date, "snapshot": snap})
	} else {
		output.PrintLeaderboard(date, snap)
	}
	return nil
}

func handleDates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	dates := d.service.Index().Dates(ctx)
	if raw {
		output.PrintJSON(dates)
		return nil
	}
	if len(dates) == 0 {
		fmt.Println("No recap data available.")
		return nil
	}
	for _, date := range dates {
		fmt.Println(date)
	}
	return nil
}

func handleLatest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	latest, ok := d.service.Index().MostRecent(ctx)
	if !ok {
		fmt.Println("No recap data available.")
		return nil
	}
	fmt.Println(latest)
	return nil
}

func handleCacheEvict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	removed := d.cache.Evict(ctx)
	fmt.Printf("Evicted %d cached snapshot(s).\n", removed)
	return nil
}

func handleCachePath(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	if fs, ok := d.store.(*store.FilesystemStore); ok {
		fmt.Println(fs.Root())
		return nil
	}
	fmt.Printf("Backend %q has no local path.\n", d.cfg.StoreBackend)
	return nil
}

func handleServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = d.cfg.ListenAddr
	}

	core.ProgressPrint(fmt.Sprintf("Serving recaps on %s…", addr), quiet)
	return server.New(d.service, verbose).Run(addr)
}

func handleMCP(cmd *cobra.Command, args []string) error {
	return runMCPServer(cmd.Context())
}
