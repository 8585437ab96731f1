package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"

	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

type SimConfig struct {
	APIBaseURL     string
	Duration       time.Duration
	Workers        int
	ReturningRatio float64
	RequestTimeout time.Duration
}

// Returning patients known to the seeded roster.
var returningPatients = []struct{ name, dob string }{
	{name: "John Smith", dob: "1980-04-12"},
}

var preferences = []struct{ doctor, location string }{
	{doctor: "Dr. Evelyn Reed", location: "Downtown"},
	{doctor: "Dr. Marcus Chen", location: "Northside"},
	{doctor: "Dr. Priya Patel", location: "Downtown"},
	{doctor: "Dr. Samuel Okafor", location: "Lakeside"},
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Metrics holds one entry per scripted turn plus whole-conversation outcomes.
type Metrics struct {
	Start    OperationMetrics
	Identity OperationMetrics
	Confirm  OperationMetrics
	Select   OperationMetrics
	Email    OperationMetrics

	Booked         int64
	NoAvailability int64
	Abandoned      int64
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	logger  *logging.Logger
	metrics Metrics
}

type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Stage          string `json:"stage"`
	Reply          string `json:"reply"`
	AppointmentID  string `json:"appointment_id"`
	Completed      bool   `json:"completed"`
}

var errConflict = errors.New("conflict")

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", "simulate")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("simulator starting",
		"api", cfg.APIBaseURL,
		"duration", cfg.Duration.String(),
		"workers", cfg.Workers,
		"returning_ratio", cfg.ReturningRatio,
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:     strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:       getDuration("SIM_DURATION", 30*time.Second),
		Workers:        getInt("SIM_WORKERS", 10),
		ReturningRatio: getFloat("SIM_RETURNING_RATIO", 0.3),
		RequestTimeout: getDuration("SIM_REQUEST_TIMEOUT", 90*time.Second),
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.ReturningRatio < 0 || cfg.ReturningRatio > 1 {
		return fmt.Errorf("SIM_RETURNING_RATIO must be between 0 and 1")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	seed := time.Now().UnixNano() + int64(workerID)
	rng := rand.New(rand.NewSource(seed))
	faker := gofakeit.New(uint64(seed))

	for ctx.Err() == nil {
		s.converse(ctx, rng, faker)
	}
}

// converse drives one scripted conversation from greeting to intake form.
func (s *Simulator) converse(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	name := faker.Name()
	dob := faker.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)).Format("2006-01-02")
	if rng.Float64() < s.config.ReturningRatio {
		p := returningPatients[rng.Intn(len(returningPatients))]
		name, dob = p.name, p.dob
	}
	pref := preferences[rng.Intn(len(preferences))]

	resp, err := s.step(ctx, &s.metrics.Start, "/conversations", "Hello, I'd like to book an appointment.")
	if err != nil {
		atomic.AddInt64(&s.metrics.Abandoned, 1)
		return
	}
	path := "/conversations/" + resp.ConversationID + "/messages"

	script := []struct {
		om   *OperationMetrics
		text string
	}{
		{&s.metrics.Identity, fmt.Sprintf("My name is %s, born %s. I'd like to see %s at %s.", name, dob, pref.doctor, pref.location)},
		{&s.metrics.Confirm, "Yes, that's correct."},
		// Picking among the first three keeps workers competing for the same slots.
		{&s.metrics.Select, strconv.Itoa(rng.Intn(3) + 1)},
		{&s.metrics.Email, faker.Email()},
	}

	for _, turn := range script {
		if ctx.Err() != nil {
			atomic.AddInt64(&s.metrics.Abandoned, 1)
			return
		}
		resp, err = s.step(ctx, turn.om, path, turn.text)
		if err != nil {
			atomic.AddInt64(&s.metrics.Abandoned, 1)
			return
		}
		if resp.Stage == "no_availability" {
			atomic.AddInt64(&s.metrics.NoAvailability, 1)
			return
		}
	}

	if resp.Stage == "completed" && resp.AppointmentID != "" {
		atomic.AddInt64(&s.metrics.Booked, 1)
		return
	}
	atomic.AddInt64(&s.metrics.Abandoned, 1)
}

func (s *Simulator) step(ctx context.Context, om *OperationMetrics, path, text string) (*conversationResponse, error) {
	body, _ := json.Marshal(map[string]string{"message": text})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		om.Record(latency, false, false)
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		om.Record(latency, false, true)
		return nil, errConflict
	default:
		om.Record(latency, false, false)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		om.Record(latency, false, false)
		return nil, err
	}

	om.Record(latency, true, false)
	return &out, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Start conversation", &s.metrics.Start)
	printOperationReport("Identity details", &s.metrics.Identity)
	printOperationReport("Confirm details", &s.metrics.Confirm)
	printOperationReport("Select slot", &s.metrics.Select)
	printOperationReport("Email", &s.metrics.Email)

	fmt.Println("Conversations:")
	fmt.Printf("  Booked: %d\n", atomic.LoadInt64(&s.metrics.Booked))
	fmt.Printf("  No availability: %d\n", atomic.LoadInt64(&s.metrics.NoAvailability))
	fmt.Printf("  Abandoned: %d\n", atomic.LoadInt64(&s.metrics.Abandoned))
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Busy: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
