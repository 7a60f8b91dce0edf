// Command backfill recomputes stored offer totals from their lines. Useful
// after a rounding or VAT change: stored subtotal, vat_amount, total and
// line_total columns are rewritten wherever they drifted from the lines.
// Only draft offers are touched; sent and decided offers keep the amounts
// the customer saw.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	offers := postgres.NewOfferRepo(db)

	ctx := context.Background()
	offset := 0
	scanned := 0
	fixed := 0

	for {
		var ids []uuid.UUID
		err := db.SelectContext(ctx, &ids,
			`SELECT id FROM offers
			 WHERE status = $1
			 ORDER BY created_at
			 LIMIT $2 OFFSET $3`, domain.OfferStatusDraft, batchSize, offset)
		if err != nil {
			return fmt.Errorf("querying offers at offset %d: %w", offset, err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			offer, err := offers.GetByID(ctx, id)
			if err != nil {
				log.Printf("WARN: skipping offer %s: %v", id, err)
				continue
			}
			scanned++

			beforeTotal := offer.Total
			beforeLines := make([]decimal.Decimal, len(offer.Lines))
			for i := range offer.Lines {
				beforeLines[i] = offer.Lines[i].LineTotal
			}

			offer.Recalculate()
			if offer.Total.Equal(beforeTotal) && linesUnchanged(offer.Lines, beforeLines) {
				continue
			}

			if err := offers.Update(ctx, offer); err != nil {
				log.Printf("WARN: updating offer %s: %v", id, err)
				continue
			}
			fixed++
			log.Printf("offer %s: total %s -> %s", id, beforeTotal, offer.Total)
		}

		offset += batchSize
	}

	log.Printf("scanned %d draft offers, corrected %d", scanned, fixed)
	return nil
}

// linesUnchanged reports whether Recalculate left every line total as stored.
// The offer total can match while individual lines drifted, e.g. two
// offsetting rounding errors.
func linesUnchanged(lines []domain.OfferLine, before []decimal.Decimal) bool {
	for i := range lines {
		if !lines[i].LineTotal.Equal(before[i]) {
			return false
		}
	}
	return true
}
