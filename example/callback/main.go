package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/pkg/smartforge"
)

func main() {
	flow, err := smartforge.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(f *smartforge.Frame) error {
		fmt.Printf("%s tick=%d machines=%d ledger=%d\n",
			f.Timestamp.Format(time.RFC3339), f.Seq, len(f.Machines), len(f.Anomalies))
		for _, rec := range f.Fresh {
			fmt.Printf("  %-8s %s %s value=%.2f expected %s\n",
				rec.Severity, rec.MachineName, rec.Parameter, rec.Value, rec.Expected)
		}
		return nil
	}

	if err := flow.Run(ctx, smartforge.StreamOutCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
