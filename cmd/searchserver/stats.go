package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

// runStats consumes the request-event topic until interrupted, printing the
// aggregated statistics every interval and once more on exit.
func runStats(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	top, _ := cmd.Flags().GetInt("top")
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator(top)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RequestEvents, analytics.HandleEvent(agg))

	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(ctx)
	}()
	slog.Info("consuming request events",
		"topic", cfg.Kafka.Topics.RequestEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			printStats(out, agg.Stats())
		case <-ctx.Done():
			err := <-errCh
			printStats(out, agg.Stats())
			if err != nil {
				return fmt.Errorf("consumer: %w", err)
			}
			return nil
		}
	}
}

func printStats(out io.Writer, s analytics.Stats) {
	fmt.Fprintf(out, "requests=%d zero_result=%d last_tick=%d\n", s.TotalRequests, s.ZeroResultCount, s.LastTick)
	for _, qc := range s.TopQueries {
		fmt.Fprintf(out, "  top  %6d  %s\n", qc.Count, qc.Query)
	}
	for _, qc := range s.ZeroResultQueries {
		fmt.Fprintf(out, "  zero %6d  %s\n", qc.Count, qc.Query)
	}
}
