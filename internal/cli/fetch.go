package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	kafkaadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/spf13/cobra"
)

const (
	outputJSON = "json"
	outputText = "text"
)

var (
	minMag  string
	orderBy string
	limit   int
	output  string
	publish bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one feed query and print the enriched records",
	Long: `Fetch runs a single query against the feed and prints the enriched
records in feed order. Unset flags fall back to the environment defaults.

Example:
  quakefeed fetch
  quakefeed fetch --min-mag 4.5 --order-by time --limit 20 --output text
  KAFKA_BROKERS=localhost:9092 quakefeed fetch --publish`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&minMag, "min-mag", "", "minimum magnitude (default: MIN_MAGNITUDE)")
	fetchCmd.Flags().StringVar(&orderBy, "order-by", "", "sort order: time, time-asc, magnitude, magnitude-asc (default: ORDER_BY)")
	fetchCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (default: FEED_LIMIT)")
	fetchCmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or text")
	fetchCmd.Flags().BoolVar(&publish, "publish", false, "publish records to KAFKA_SINK_TOPIC")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	q, err := overrideQuery(cfg.QueryConfig(), minMag, orderBy, limit)
	if err != nil {
		return err
	}
	if output != outputJSON && output != outputText {
		return fmt.Errorf("invalid --output %q: must be %s or %s", output, outputJSON, outputText)
	}
	if publish && !cfg.PublishEnabled() {
		return errors.New("--publish requires KAFKA_BROKERS")
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	svc := newService(cfg, logger, metrics)

	ctx := cmd.Context()
	records, err := svc.Fetch(ctx, q)
	if errors.Is(err, domain.ErrEmptyInput) {
		fmt.Fprintln(cmd.ErrOrStderr(), "no earthquake data found")
		return nil
	}
	if err != nil {
		return err
	}

	if err := writeRecords(cmd.OutOrStdout(), records, output); err != nil {
		return err
	}

	if !publish || len(records) == 0 {
		return nil
	}
	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()
	if err := writer.LoadBatch(ctx, records); err != nil {
		return fmt.Errorf("publish records: %w", err)
	}
	metrics.RecordsPublished.Add(float64(len(records)))
	logger.Info("records published", "topic", cfg.KafkaSinkTopic, "count", len(records))
	return nil
}

// overrideQuery applies the non-zero flag values on top of q.
func overrideQuery(q domain.QueryConfig, minMag, orderBy string, limit int) (domain.QueryConfig, error) {
	if minMag != "" {
		if _, err := domain.ParseMagnitude(minMag); err != nil {
			return q, fmt.Errorf("invalid --min-mag: %w", err)
		}
		q.MinMagnitude = minMag
	}
	if orderBy != "" {
		if !domain.ValidOrderBy(orderBy) {
			return q, fmt.Errorf("invalid --order-by %q", orderBy)
		}
		q.OrderBy = orderBy
	}
	if limit != 0 {
		if limit < 1 || limit > domain.MaxLimit {
			return q, fmt.Errorf("invalid --limit %d: must be between 1 and %d", limit, domain.MaxLimit)
		}
		q.Limit = limit
	}
	return q, nil
}

func writeRecords(w io.Writer, records []domain.Earthquake, format string) error {
	if format == outputText {
		return writeText(w, records)
	}
	if records == nil {
		records = []domain.Earthquake{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeText(w io.Writer, records []domain.Earthquake) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no earthquakes matched")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MAG\tCAT\tDATE\tTIME\tLOCATION")
	for _, r := range records {
		location := strings.TrimSpace(r.LocationOffset + " " + r.LocationPrimary)
		location = strings.Join(strings.Fields(location), " ")
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.FormattedMagnitude, r.MagnitudeCategory, r.Date, r.Time, location)
	}
	return tw.Flush()
}
