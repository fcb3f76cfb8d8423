package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000"
)

func main() {
	flow, err := smartforge.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, frames, closeFrames := smartforge.NewChannelSubscriber("alerts", 8)
	defer closeFrames()

	go criticalAlerts(frames)

	if err := flow.Run(ctx, smartforge.StreamOutSubscriber(sub)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

// criticalAlerts prints only Critical records, once, as they first appear.
func criticalAlerts(frames <-chan *smartforge.Frame) {
	for f := range frames {
		for _, rec := range f.Fresh {
			if rec.Severity != smartforge.SeverityCritical {
				continue
			}
			fmt.Printf("[tick %d] CRITICAL %s (%s) %s=%.2f, expected %s\n",
				f.Seq, rec.MachineName, rec.MachineID, rec.Parameter, rec.Value, rec.Expected)
		}
	}
}
