package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/hermes/internal/bucket"
	"github.com/carson-networks/hermes/internal/config"
	"github.com/carson-networks/hermes/internal/datagen"
	"github.com/carson-networks/hermes/internal/ingest"
	"github.com/carson-networks/hermes/internal/operator"
	"github.com/carson-networks/hermes/internal/service"
	"github.com/carson-networks/hermes/internal/tables"
)

func generateCommand(logger *logrus.Logger) *cli.Command {
	defaults := datagen.DefaultOptions("")
	return &cli.Command{
		Name:  "generate",
		Usage: "write sample bank transaction files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "transactions", Usage: "output directory"},
			&cli.IntFlag{Name: "days", Value: defaults.Days},
			&cli.IntFlag{Name: "batches", Value: defaults.BatchesPerDay, Usage: "files per bank per day"},
			&cli.IntFlag{Name: "per-batch", Value: defaults.TransactionsPerBatch, Usage: "transactions per file"},
			&cli.Uint64Flag{Name: "seed", Value: defaults.Seed},
		},
		Action: func(c *cli.Context) error {
			opts := datagen.DefaultOptions(c.String("out"))
			opts.Days = c.Int("days")
			opts.BatchesPerDay = c.Int("batches")
			opts.TransactionsPerBatch = c.Int("per-batch")
			opts.Seed = c.Uint64("seed")

			generator, err := datagen.NewGenerator(opts, logger)
			if err != nil {
				return err
			}
			files, err := generator.Generate()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(c.App.Writer, f)
			}
			return nil
		},
	}
}

func uploadCommand(envConfig *config.Config, logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "upload a directory of transaction files to the bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "transactions"},
			&cli.StringFlag{Name: "bucket", Value: envConfig.S3Bucket},
		},
		Action: func(c *cli.Context) error {
			uploader, err := bucket.NewUploaderFromConfig(c.Context, envConfig, logger)
			if err != nil {
				return err
			}
			keys, err := uploader.UploadDir(c.Context, c.String("dir"), c.String("bucket"))
			for _, key := range keys {
				fmt.Fprintln(c.App.Writer, key)
			}
			return err
		},
	}
}

// batchRecord is one line of `hermesctl batch` output.
type batchRecord struct {
	File           string  `json:"file"`
	TxnID          string  `json:"txn_id"`
	AmountSAR      float64 `json:"amount_sar,omitempty"`
	Category       string  `json:"category,omitempty"`
	RateWasAssumed bool    `json:"rate_was_assumed,omitempty"`
	SuspicionScore *int    `json:"suspicion_score,omitempty"`
	Error          string  `json:"error,omitempty"`
}

func batchCommand(envConfig *config.Config, logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "enrich and score every transaction file under a directory, one JSON line per transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "transactions"},
			&cli.StringFlag{Name: "tables", Value: envConfig.TablesFile, Usage: "tables YAML file, built-in tables when empty"},
			&cli.IntFlag{Name: "workers", Value: envConfig.BatchWorkers},
		},
		Action: func(c *cli.Context) error {
			t, err := loadTables(c.String("tables"))
			if err != nil {
				return err
			}
			store, err := tables.NewStore(t)
			if err != nil {
				return err
			}

			delegator := operator.NewOperatorDelegator(service.NewEnrichmentPipeline(store), c.Int("workers"))
			delegator.Start()
			defer delegator.Stop()

			enc := json.NewEncoder(c.App.Writer)
			total, failed := 0, 0
			err = ingest.Walk(c.String("dir"), func(path string, txns []ingest.RawTransaction, readErr error) error {
				records := []batchRecord{{File: path}}
				if readErr != nil {
					records[0].Error = readErr.Error()
				} else {
					records = scoreFile(c.Context, delegator, path, txns)
				}
				for _, record := range records {
					total++
					if record.Error != "" {
						failed++
					}
					if err := enc.Encode(record); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{"transactions": total, "failed": failed}).Info("Hermesctl.Batch.complete")
			return nil
		},
	}
}

func scoreFile(ctx context.Context, processor operator.Processor, path string, txns []ingest.RawTransaction) []batchRecord {
	items := make([]operator.BatchItem, len(txns))
	for i, txn := range txns {
		items[i] = operator.BatchItem{
			TxnID:     txn.TxnID,
			Merchant:  txn.Merchant,
			Amount:    txn.Amount,
			Currency:  txn.Currency,
			Timestamp: txn.Timestamp,
			Err:       txn.Err,
		}
	}

	outcomes := operator.RunBatch(ctx, processor, items)
	records := make([]batchRecord, len(outcomes))
	for i, outcome := range outcomes {
		records[i] = batchRecord{File: path, TxnID: outcome.TxnID}
		if outcome.Err != nil {
			records[i].Error = outcome.Err.Error()
			continue
		}
		score := outcome.Scored.SuspicionScore
		records[i].AmountSAR = outcome.Enriched.AmountRef.InexactFloat64()
		records[i].Category = outcome.Enriched.Category
		records[i].RateWasAssumed = outcome.Enriched.RateAssumed
		records[i].SuspicionScore = &score
	}
	return records
}

func tablesCommand(envConfig *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "validate and print the reference tables",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tables", Value: envConfig.TablesFile, Usage: "tables YAML file, built-in tables when empty"},
		},
		Action: func(c *cli.Context) error {
			t, err := loadTables(c.String("tables"))
			if err != nil {
				return err
			}
			if err := t.Validate(); err != nil {
				return err
			}
			fmt.Fprint(c.App.Writer, spew.Sdump(t))
			return nil
		},
	}
}

func loadTables(path string) (*tables.Tables, error) {
	if path == "" {
		return tables.Default(), nil
	}
	return tables.LoadFile(path)
}
