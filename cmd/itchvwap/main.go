// Command itchvwap parses a gzip-compressed NASDAQ ITCH 5.0 capture and
// writes a per-security, per-trading-hour running VWAP table as CSV.
//
// Usage:
//
//	itchvwap 01302019.NASDAQ_ITCH50.gz
//	itchvwap -out vwap.csv capture.gz
//	itchvwap -mongo-uri mongodb://localhost:27017/itchvwap capture.gz
//	itchvwap -serve :8100 capture.gz   # live trade feed + report API + metrics
package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feedlab/itchvwap/internal/api"
	"github.com/feedlab/itchvwap/internal/archive"
	"github.com/feedlab/itchvwap/internal/config"
	"github.com/feedlab/itchvwap/internal/instrumentation"
	"github.com/feedlab/itchvwap/internal/itch"
	"github.com/feedlab/itchvwap/internal/persist"
	"github.com/feedlab/itchvwap/internal/report"
	"github.com/feedlab/itchvwap/internal/stream"
	"github.com/feedlab/itchvwap/internal/tape"
	"github.com/feedlab/itchvwap/internal/vwap"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	if cfg.Input == "" {
		log.Fatal("usage: itchvwap [flags] <capture.gz>")
	}

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	metrics := instrumentation.NewMetrics()

	// Pipeline: reader -> tape -> sink -> aggregator (+ optional broadcast)
	agg := vwap.New()
	sink := &tapeSink{agg: agg, metrics: metrics}
	tp := tape.New(sink)
	sink.tp = tp

	// Monitoring server (opt-in)
	apiServer := api.NewServer()
	var srv *http.Server
	if cfg.ServeAddr != "" {
		mgr := stream.NewManager(cfg.SendBufferSize)
		sink.mgr = mgr

		mux := http.NewServeMux()
		mux.HandleFunc("/feed", stream.Handler(mgr))
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"status":"ok","clients":%d}`, mgr.ClientCount())
		})
		apiServer.Register(mux)

		srv = &http.Server{Addr: cfg.ServeAddr, Handler: mux}
		go func() {
			log.Printf("monitoring server listening on %s", cfg.ServeAddr)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("server error: %v", err)
			}
		}()
	}

	// Parse
	log.Printf("parsing %s", cfg.Input)
	start := time.Now()
	if err := parse(cfg, tp, metrics); err != nil {
		log.Fatalf("parse failed: %v", err)
	}
	log.Printf("parsed %d trades across %d securities in %v",
		agg.TradeCount(), len(tp.Directory()), time.Since(start).Round(time.Millisecond))

	// Fold and project
	table, err := agg.Fold(tp.Directory(), tp.CloseTime())
	if err != nil {
		log.Fatalf("aggregation failed: %v", err)
	}
	rows := table.Rows(tp.Directory())

	if err := report.WriteCSVFile(cfg.Output, rows); err != nil {
		log.Fatalf("write report: %v", err)
	}
	log.Printf("report written to %s (%d rows)", cfg.Output, len(rows))

	// MongoDB persistence (opt-in)
	if cfg.MongoURI != "" {
		if err := saveReport(ctx, cfg, tp, agg, rows); err != nil {
			log.Fatalf("persist report: %v", err)
		}
		log.Println("report persisted to MongoDB")
	}

	// Tape archive (opt-in)
	if cfg.ArchiveDir != "" {
		archiver := archive.New(cfg.ArchiveDir, cfg.ArchiveMaxGB)
		if err := archiver.WriteTape(cfg.Input, tp.Directory(), agg.Trades()); err != nil {
			log.Fatalf("archive tape: %v", err)
		}
	}

	// In serve mode, publish the report and keep the server up until
	// interrupted.
	if srv != nil {
		apiServer.Publish(api.SessionInfo{
			Source:     cfg.Input,
			OpenNanos:  tp.OpenTime(),
			CloseNanos: tp.CloseTime(),
			Trades:     agg.TradeCount(),
			Securities: len(tp.Directory()),
		}, rows)
		log.Println("report published, serving until interrupted")

		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}
}

// parse drives the decode loop: one message at a time, folded into the tape,
// until the end-of-market event, a clean EOF, or an unrecognized tag (end of
// usable stream). Decode and lookup errors abort: there is no partial output.
func parse(cfg *config.Config, tp *tape.Tape, metrics *instrumentation.Metrics) error {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	r := itch.NewReader(gz)
	var lastOffset, lastProgress int64

	for {
		m, err := r.Next()
		if err == io.EOF {
			log.Printf("end of stream at %d bytes", r.Offset())
			return nil
		}
		if errors.Is(err, itch.ErrUnknownType) {
			// End of the usable stream; everything before it aggregated.
			log.Printf("stopping: %v", err)
			return nil
		}
		if err != nil {
			return err
		}

		metrics.RecordMessage(byte(m.Type))
		metrics.RecordBytes(r.Offset() - lastOffset)
		lastOffset = r.Offset()

		recordExclusions(tp, m, metrics)

		done, err := tp.Apply(m)
		if err != nil {
			return fmt.Errorf("offset %d: %w", r.Offset(), err)
		}

		switch {
		case m.Type == itch.MsgStockDirectory:
			metrics.SetSecurities(len(tp.Directory()))
		case m.Type == itch.MsgSystemEvent && m.EventCode == itch.EventStartOfMarket:
			log.Printf("market opened at %s", itch.FormatTimestamp(m.Timestamp))
		}

		if done {
			log.Printf("market closed at %s, %d bytes parsed",
				itch.FormatTimestamp(m.Timestamp), r.Offset())
			return nil
		}

		if cfg.ProgressBytes > 0 && r.Offset()-lastProgress >= cfg.ProgressBytes {
			log.Printf("%d MB parsed...", r.Offset()>>20)
			lastProgress = r.Offset()
		}
	}
}

// recordExclusions counts executions that will not reach the tape.
func recordExclusions(tp *tape.Tape, m itch.Message, metrics *instrumentation.Metrics) {
	switch m.Type {
	case itch.MsgOrderExecutedPrice:
		if m.Printable != 'Y' {
			metrics.RecordExcluded("non_printable")
		} else if !tp.Started() {
			metrics.RecordExcluded("pre_open")
		}
	case itch.MsgOrderExecuted, itch.MsgTrade:
		if !tp.Started() {
			metrics.RecordExcluded("pre_open")
		}
	}
}

// tapeSink feeds collected trades to the aggregator and, in serve mode,
// broadcasts them to WebSocket subscribers.
type tapeSink struct {
	agg     *vwap.Aggregator
	metrics *instrumentation.Metrics
	tp      *tape.Tape
	mgr     *stream.Manager // nil when serve mode is off
}

func (s *tapeSink) OnTrade(t tape.Trade) error {
	if err := s.agg.OnTrade(t); err != nil {
		return err
	}
	s.metrics.RecordTrade()

	if s.mgr != nil {
		ticker, _ := s.tp.Ticker(t.StockLocate)
		s.mgr.Broadcast(stream.TradeMsg{
			Ticker:      ticker,
			StockLocate: t.StockLocate,
			Price:       itch.FormatPrice4(t.PriceRaw),
			Shares:      t.Shares,
			Timestamp:   t.Timestamp,
		})
	}
	return nil
}

// saveReport connects, migrates, and upserts the report and session window.
func saveReport(ctx context.Context, cfg *config.Config, tp *tape.Tape, agg *vwap.Aggregator, rows []vwap.Row) error {
	store, err := persist.NewStore(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := store.SaveReport(ctx, cfg.Input, rows); err != nil {
		return err
	}
	return store.SaveSession(ctx, cfg.Input, tp.OpenTime(), tp.CloseTime(), agg.TradeCount(), len(tp.Directory()))
}
