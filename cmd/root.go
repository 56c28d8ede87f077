package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lukman83/trustrank/config"
	"github.com/lukman83/trustrank/internal/httputil"
	"github.com/lukman83/trustrank/internal/metrics"
	"github.com/lukman83/trustrank/internal/platform"
	"github.com/lukman83/trustrank/internal/rank"
	"github.com/lukman83/trustrank/internal/shopee"
	"github.com/lukman83/trustrank/internal/stealth"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	appMetrics *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "trustrank [keyword]",
	Short: "Rank marketplace search results by shop and reviewer trust",
	Long: "trustrank searches Shopee for a keyword, scores every well-rated item by its seller's\n" +
		"profile and its reviewers' account age, and prints the items ranked by that score.\n" +
		"Run without arguments to be prompted for a keyword.",
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: initConfig,
	RunE:              runRank,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "Marketplace base URL (default https://shopee.vn)")
	pf.Int("max-concurrent", 0, "Maximum upstream requests in flight")
	pf.Duration("timeout", 0, "Per-request timeout")
	pf.String("delay-profile", "", "Delay profile: off, aggressive, normal, cautious")
	pf.Bool("respect-robots", false, "Respect robots.txt rules")
	pf.String("proxy-mode", "", "Proxy mode: direct, decodo, custom")
	pf.String("proxy-file", "", "Path to proxy list file for custom mode")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().String("format", "table", "Output format: table, json")
}

// initConfig builds cfg from defaults, environment and flags, in that order.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfg = config.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("base-url") {
		cfg.BaseURL, _ = pf.GetString("base-url")
	}
	if pf.Changed("max-concurrent") {
		cfg.MaxConcurrent, _ = pf.GetInt("max-concurrent")
	}
	if pf.Changed("timeout") {
		cfg.RequestTimeout, _ = pf.GetDuration("timeout")
	}
	if pf.Changed("delay-profile") {
		cfg.DelayProfile, _ = pf.GetString("delay-profile")
	}
	if pf.Changed("respect-robots") {
		cfg.RespectRobots, _ = pf.GetBool("respect-robots")
	}
	if pf.Changed("proxy-mode") {
		cfg.ProxyMode, _ = pf.GetString("proxy-mode")
	}
	if pf.Changed("proxy-file") {
		cfg.ProxyFile, _ = pf.GetString("proxy-file")
	}
	if pf.Changed("log-level") {
		cfg.LogLevel, _ = pf.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var err error
	logger, err = config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	appMetrics = metrics.New()
	return nil
}

// buildHTTPClient creates the paced HTTP client shared by every fetch.
func buildHTTPClient() (*http.Client, error) {
	profile, err := stealth.ParseDelayProfile(cfg.DelayProfile)
	if err != nil {
		return nil, err
	}

	var proxies []stealth.ProxyProvider
	switch cfg.ProxyMode {
	case "decodo":
		proxies = []stealth.ProxyProvider{&stealth.DecodoProvider{
			Username: cfg.DecodoUsername,
			Password: cfg.DecodoPassword,
			Country:  cfg.DecodoCountry,
			City:     cfg.DecodoCity,
		}}
	case "custom":
		proxies, err = stealth.LoadProxyFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
	}

	transport := &stealth.Transport{
		Base:        httputil.NewBaseTransport(),
		Proxy:       stealth.NewProxyRotator(proxies),
		Delay:       stealth.NewHumanDelay(profile),
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}
	if cfg.RespectRobots {
		transport.Robots = stealth.NewRobotsChecker(&http.Client{Timeout: 10 * time.Second})
	}

	return httputil.NewHTTPClient(transport), nil
}

// initSources registers all available marketplace sources.
func initSources() error {
	client, err := buildHTTPClient()
	if err != nil {
		return err
	}
	platform.Register(shopee.NewClient(client, shopee.Options{
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
	}))
	return nil
}

func newPipeline() (*rank.Pipeline, error) {
	if err := initSources(); err != nil {
		return nil, err
	}
	source, err := platform.Get(cfg.Marketplace)
	if err != nil {
		return nil, err
	}
	return rank.NewPipeline(source, cfg.RankOptions(), logger, appMetrics), nil
}
