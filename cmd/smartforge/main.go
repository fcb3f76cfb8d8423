package main

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/catalog"
)

//go:embed assets/banner.txt
var banner string

func main() {
	if os.Getenv("SMARTFORGE_NO_BANNER") == "" {
		fmt.Print(banner)
		fmt.Println()
	}
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "catalog":
		err = catalogCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("smartforge %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := smartforge.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := smartforge.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

// catalogCommand resolves the configured catalog source and prints what the
// engine would load, validating every envelope on the way.
func catalogCommand(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file")
	asJSON := fs.Bool("json", false, "Print the catalog as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := smartforge.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	src, db, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	machines, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(machines)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tLOCATION\tSTATE\tENVELOPE")
	for _, m := range machines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Type, m.Location, m.State, envelopeStatus(m.Envelope))
	}
	return tw.Flush()
}

func envelopeStatus(env smartforge.Envelope) string {
	var problems []string
	for _, p := range []smartforge.Parameter{smartforge.MouldingPressure, smartforge.SandTemperature, smartforge.CycleTimeVariance} {
		r, err := env.Range(p)
		switch {
		case err != nil:
			problems = append(problems, err.Error())
		case r.IsZero():
			problems = append(problems, string(p)+" unmonitored")
		}
	}
	if len(problems) == 0 {
		return "ok"
	}
	return strings.Join(problems, "; ")
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 3*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"smartforge_ticks_total":              0,
		"smartforge_machines_running":         0,
		"smartforge_ledger_size":              0,
		"smartforge_anomalies_warning_total":  0,
		"smartforge_anomalies_critical_total": 0,
		"smartforge_frames_dropped_total":     0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] ticks=%.0f running=%.0f ledger=%.0f warnings=%.0f criticals=%.0f dropped=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["smartforge_ticks_total"],
		targets["smartforge_machines_running"],
		targets["smartforge_ledger_size"],
		targets["smartforge_anomalies_warning_total"],
		targets["smartforge_anomalies_critical_total"],
		targets["smartforge_frames_dropped_total"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`SmartForge CLI

Usage:
  smartforge <command> [flags]

Commands:
  run        Start the simulator and anomaly engine using the provided config
  validate   Load and validate a config file without starting the runtime
  catalog    Resolve the configured machine catalog and print it
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  smartforge run -config ./data/config.yaml
  smartforge validate -config ./data/config.yaml
  smartforge catalog -config ./data/config.yaml -json
  smartforge stats -url http://localhost:9100/metrics -interval 1s
`)
}
