// Command genmock reads a CSV of people and generates sweep request and sweep
// result fixtures using the real sweep path, so the fixtures match what the
// pipeline publishes. With -brokers it also publishes the requests to Kafka
// for local runs.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -people testdata/people.csv \
//	  -requests-out testdata/sweep_requests.json \
//	  -results-out testdata/sweep_results.json \
//	  [-brokers localhost:9092 -topic sweep-requests]
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/sweep"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// fixtureTime pins ComputedAt so regenerated fixtures are byte-identical.
var fixtureTime = time.Date(2024, time.January, 15, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	peoplePath := flag.String("people", "", "CSV with columns id,sex,age,height_cm,mass_kg")
	requestsOut := flag.String("requests-out", "", "output path for the sweep request fixture")
	resultsOut := flag.String("results-out", "", "output path for the sweep result fixture")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers; publish requests when set")
	topic := flag.String("topic", "sweep-requests", "Kafka topic for published requests")
	flag.Parse()

	if *peoplePath == "" || *requestsOut == "" || *resultsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -people, -requests-out, -results-out")
	}

	f, err := os.Open(*peoplePath)
	if err != nil {
		return fmt.Errorf("open people CSV: %w", err)
	}
	defer f.Close()

	requests, err := readRequests(f)
	if err != nil {
		return err
	}
	log.Printf("people: %d", len(requests))

	results, err := computeResults(context.Background(), requests)
	if err != nil {
		return err
	}

	if err := writeFixture(*requestsOut, requests); err != nil {
		return err
	}
	if err := writeFixture(*resultsOut, results); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", *requestsOut, *resultsOut)

	if *brokers != "" {
		if err := publish(context.Background(), strings.Split(*brokers, ","), *topic, requests); err != nil {
			return err
		}
		log.Printf("published %d requests to %s", len(requests), *topic)
	}
	return nil
}

// readRequests parses a people CSV with a header row into default-grid sweep
// requests.
func readRequests(r io.Reader) ([]domain.SweepRequest, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range []string{"id", "sex", "age", "height_cm", "mass_kg"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var requests []domain.SweepRequest //nolint:prealloc // size depends on CSV contents
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		sex, err := domain.ParseSex(strings.TrimSpace(row[col["sex"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		person := domain.BiophysicalFeatures{
			Sex:      sex,
			Age:      parseFloatOrZero(row[col["age"]]),
			HeightCm: parseFloatOrZero(row[col["height_cm"]]),
			MassKg:   parseFloatOrZero(row[col["mass_kg"]]),
		}
		if err := person.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		requests = append(requests, domain.SweepRequest{ID: strings.TrimSpace(row[col["id"]]), Person: person})
	}
	return requests, nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// computeResults runs each request through the same sweep service the
// pipeline uses, under a fixed clock.
func computeResults(ctx context.Context, requests []domain.SweepRequest) ([]domain.SweepResult, error) {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsWith(nil)
	svc, err := thermo.NewService(model.DefaultParams(), logger, metrics)
	if err != nil {
		return nil, err
	}
	sweeps := sweep.NewService(svc, sweep.New(sweep.Options{}, logger, metrics))

	results := make([]domain.SweepResult, 0, len(requests))
	for _, req := range requests {
		result, err := sweeps.Sweep(ctx, req)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func writeFixture(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // fixture files are meant to be shared
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func publish(ctx context.Context, brokers []string, topic string, requests []domain.SweepRequest) error {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	defer w.Close()

	msgs := make([]kafkago.Message, len(requests))
	for i, req := range requests {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal request %s: %w", req.ID, err)
		}
		msgs[i] = kafkago.Message{Key: []byte(req.ID), Value: data}
	}
	return w.WriteMessages(ctx, msgs...)
}
