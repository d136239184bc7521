package persist

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/feedlab/itchvwap/internal/vwap"
)

// reportDoc is one security's persisted report row. Keyed by (source, ticker)
// so re-running the same capture upserts rather than duplicates.
type reportDoc struct {
	Source      string    `bson:"source"`
	Ticker      string    `bson:"ticker"`
	StockLocate uint16    `bson:"stock_locate"`
	VWAP        []float64 `bson:"vwap"`
	Hours       []string  `bson:"hours"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// sessionDoc records the parsed session window per capture.
type sessionDoc struct {
	Source     string    `bson:"source"`
	OpenNanos  int64     `bson:"open_nanos"`
	CloseNanos int64     `bson:"close_nanos"`
	Trades     int64     `bson:"trades"`
	Securities int64     `bson:"securities"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// SaveReport upserts the full VWAP table for one capture file.
func (s *Store) SaveReport(ctx context.Context, source string, rows []vwap.Row) error {
	if len(rows) == 0 {
		return nil
	}

	labels := vwap.Labels()
	now := time.Now()

	models := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		doc := reportDoc{
			Source:      source,
			Ticker:      row.Ticker,
			StockLocate: row.StockLocate,
			VWAP:        row.VWAP[:],
			Hours:       labels[:],
			UpdatedAt:   now,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"source": source, "ticker": row.Ticker}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	_, err := s.db.Collection("vwap_reports").BulkWrite(ctx, models,
		options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk write vwap report: %w", err)
	}
	return nil
}

// SaveSession upserts the session window and tape counters for one capture.
func (s *Store) SaveSession(ctx context.Context, source string, openNanos, closeNanos uint64, trades, securities int) error {
	doc := sessionDoc{
		Source:     source,
		OpenNanos:  int64(openNanos),
		CloseNanos: int64(closeNanos),
		Trades:     int64(trades),
		Securities: int64(securities),
		UpdatedAt:  time.Now(),
	}

	_, err := s.db.Collection("sessions").ReplaceOne(ctx,
		bson.M{"source": source}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
