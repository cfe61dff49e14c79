package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	stattop "github.com/jondoveston/stattop/internal"
	"github.com/jondoveston/stattop/internal/agent"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stattop [host-url]",
	Short: "Terminal dashboard for host CPU, memory, disk and network usage",
	Long: `stattop polls a stats endpoint every 2 seconds and shows CPU, memory and
disk usage as donut charts plus rolling CPU, memory and network charts.

Examples:
  stattop
  stattop --stats-url http://server.lan:8082/api/stats
  stattop --prometheus-url http://prometheus.lan:9090 --instance server.lan:9100
  stattop --node-exporter-url http://server.lan:9100/metrics
  stattop http://server.lan
  STATTOP_STATS_URL=http://server.lan:8082/api/stats stattop --headless`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Serve this host's stats on /api/stats and /metrics",
	Args:  cobra.NoArgs,
	RunE:  runAgent,
}

func init() {
	rootCmd.Flags().String("stats-url", stattop.DEFAULT_STATS_URL, "stats endpoint URL")
	rootCmd.Flags().String("node-exporter-url", "", "node_exporter metrics endpoint URL")
	rootCmd.Flags().String("prometheus-url", "", "Prometheus server URL")
	rootCmd.Flags().String("prometheus-job", stattop.DEFAULT_PROMETHEUS_JOB, "Prometheus job scraping node_exporter")
	rootCmd.Flags().String("instance", "", "Prometheus instance to show (default: first target that is up)")
	rootCmd.Flags().String("log-file", "stattop.log", "file the dashboard logs to")
	rootCmd.Flags().String("export-dir", ".", "directory chart exports are written to")
	rootCmd.Flags().Bool("headless", false, "print one line per poll instead of drawing the dashboard")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	agentCmd.Flags().String("listen", agent.DEFAULT_LISTEN_ADDR, "address the agent listens on")
	agentCmd.Flags().String("disk-path", "/", "filesystem whose usage is reported")
	rootCmd.AddCommand(agentCmd)

	// env prefix has to be set before BindEnv, which resolves STATTOP_* names immediately
	viper.SetEnvPrefix("stattop")
	viper.AutomaticEnv()

	// Bind flags to Viper keys (dashes in flags become underscores in viper)
	for key, flag := range map[string]string{
		"stats_url":         "stats-url",
		"node_exporter_url": "node-exporter-url",
		"prometheus_url":    "prometheus-url",
		"prometheus_job":    "prometheus-job",
		"instance":          "instance",
		"log_file":          "log-file",
		"export_dir":        "export-dir",
		"headless":          "headless",
	} {
		if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
			log.Fatalf("failed to bind %s: %v", key, err)
		}
		if err := viper.BindEnv(key); err != nil {
			log.Fatalf("failed to bind %s: %v", key, err)
		}
	}
	for key, flag := range map[string]string{
		"listen":    "listen",
		"disk_path": "disk-path",
	} {
		if err := viper.BindPFlag(key, agentCmd.Flags().Lookup(flag)); err != nil {
			log.Fatalf("failed to bind %s: %v", key, err)
		}
		if err := viper.BindEnv(key); err != nil {
			log.Fatalf("failed to bind %s: %v", key, err)
		}
	}
}

func run(cmd *cobra.Command, args []string) error {
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Printf("stattop version %s\n", version)
		return nil
	}

	headless := viper.GetBool("headless")
	if headless {
		log.SetOutput(os.Stderr)
	} else {
		// the dashboard owns the terminal, so logs go to a file
		f, err := os.OpenFile(viper.GetString("log_file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	log.SetHeader("${time_rfc3339} ${level}")
	log.SetLevel(log.INFO)
	log.Infof("Starting stattop %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := selectSource(ctx, args)
	if err != nil {
		return err
	}
	log.Infof("Using %T backend: %s", source, source.Name())

	if headless {
		if err := stattop.RunHeadless(ctx, source, os.Stdout); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return stattop.Dashboard(source, viper.GetString("export_dir"))
}

// selectSource picks the backend: explicit Prometheus or node_exporter URLs win,
// then a positional host is tried, then the stats URL is used
func selectSource(ctx context.Context, args []string) (stattop.Source, error) {
	if raw := viper.GetString("prometheus_url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing prometheus url %q: %w", raw, err)
		}
		ps, err := stattop.NewPrometheusSource(u, viper.GetString("prometheus_job"), viper.GetString("instance"))
		if err != nil {
			return nil, err
		}
		return ps, nil
	}

	if raw := viper.GetString("node_exporter_url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing node_exporter url %q: %w", raw, err)
		}
		return stattop.NewNodeExporterSource(u), nil
	}

	if len(args) == 1 {
		u, err := url.Parse(args[0])
		if err != nil {
			return nil, fmt.Errorf("parsing host url %q: %w", args[0], err)
		}
		return stattop.DetectSource(ctx, u)
	}

	raw := viper.GetString("stats_url")
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing stats url %q: %w", raw, err)
	}
	return stattop.NewStatsSource(u), nil
}

func runAgent(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	log.SetHeader("${time_rfc3339} ${level}")
	log.SetLevel(log.INFO)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	diskPath := viper.GetString("disk_path")
	return agent.Serve(ctx, viper.GetString("listen"), agent.NewHostSampler(diskPath), agent.NewHostSampler(diskPath))
}
