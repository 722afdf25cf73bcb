package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"
)

// MaxSeed bounds ad hoc seeds to [0, MaxSeed).
const MaxSeed = 100000

const randomOrgURL = "https://api.random.org/json-rpc/4/invoke"

// SeedSource hands out seeds for ad hoc rounds. With a random.org API key it
// draws from a pool of true random integers; otherwise, or whenever the API
// is unavailable, it falls back to crypto/rand.
type SeedSource struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	pool []int64
}

// NewSeedSource creates a seed source. Returns nil if apiKey is empty; a nil
// source is valid and uses crypto/rand.
func NewSeedSource(apiKey string) *SeedSource {
	if apiKey == "" {
		return nil
	}
	return &SeedSource{
		apiKey:   apiKey,
		endpoint: randomOrgURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled returns true if the source talks to random.org.
func (s *SeedSource) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// Seed returns a seed in [0, MaxSeed).
func (s *SeedSource) Seed() int64 {
	if !s.Enabled() {
		return RandomSeed()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pool) < 5 {
		if err := s.refill(); err != nil {
			slog.Debug("random.org refill failed", "error", err)
		}
	}
	if len(s.pool) == 0 {
		return RandomSeed()
	}

	v := s.pool[0]
	s.pool = s.pool[1:]
	return v
}

func (s *SeedSource) refill() error {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateIntegers",
		"params": map[string]any{
			"apiKey": s.apiKey,
			"n":      50,
			"min":    0,
			"max":    MaxSeed - 1,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []int64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("api: %s", result.Error.Message)
	}

	for _, v := range result.Result.Random.Data {
		if v >= 0 && v < MaxSeed {
			s.pool = append(s.pool, v)
		}
	}
	slog.Debug("random.org seed pool refilled", "count", len(result.Result.Random.Data))
	return nil
}

// RandomSeed returns floor(u * MaxSeed) for a crypto/rand uniform u.
func RandomSeed() int64 {
	return int64(math.Floor(cryptoFloat() * MaxSeed))
}

// cryptoFloat generates a uniform float64 in [0, 1) from crypto/rand.
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// 53 bits fill the float64 mantissa exactly.
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
