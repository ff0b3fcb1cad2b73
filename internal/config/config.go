package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingMongoURI is returned by Load when MONGO_URI is not set.
var ErrMissingMongoURI = errors.New("MONGO_URI is not set in the environment variables")

const (
	// TransportTCP relays submissions over a one-shot loopback socket.
	TransportTCP = "tcp"
	// TransportNATS relays submissions through a NATS subject.
	TransportNATS = "nats"

	// CodecJSON and CodecCBOR name the interchange formats understood on the relay.
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Config holds runtime configuration shared by the web front and the relay listener.
type Config struct {
	HTTPAddr          string
	WebRoot           string
	MongoURI          string
	MongoDatabase     string
	MessageCollection string
	Timeout           time.Duration
	RelayAddr         string
	RelayListenAddr   string
	RelayReadBuffer   int
	RelayDialTimeout  time.Duration
	RelayCodec        string
	RelayTransport    string
	NatsURL           string
	NatsSubject       string
	Location          *time.Location
	ServerLog         *log.Logger
}

// Load reads environment variables and returns a fully populated Config.
// MONGO_URI is the only required value.
func Load() (Config, error) {
	mongoURI := strings.TrimSpace(os.Getenv("MONGO_URI"))
	if mongoURI == "" {
		return Config{}, ErrMissingMongoURI
	}

	timeout := durationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	dialTimeout := durationOrDefault("RELAY_DIAL_TIMEOUT", 3*time.Second)

	readBuffer := 1024
	if raw := strings.TrimSpace(os.Getenv("RELAY_READ_BUFFER")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("RELAY_READ_BUFFER must be a positive integer: %q", raw)
		}
		readBuffer = parsed
	}

	codec := strings.ToLower(envOrDefault("RELAY_CODEC", CodecJSON))
	if codec != CodecJSON && codec != CodecCBOR {
		return Config{}, fmt.Errorf("unsupported RELAY_CODEC %q", codec)
	}

	transport := strings.ToLower(envOrDefault("RELAY_TRANSPORT", TransportTCP))
	if transport != TransportTCP && transport != TransportNATS {
		return Config{}, fmt.Errorf("unsupported RELAY_TRANSPORT %q", transport)
	}

	logger := log.New(os.Stdout, "[webform-relay] ", log.LstdFlags|log.Lshortfile)

	timezone := envOrDefault("TIMEZONE", "Local")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Printf("failed to load timezone %s: %v, falling back to local time", timezone, err)
		loc = time.Local
	}

	cfg := Config{
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":3000"),
		WebRoot:           envOrDefault("WEB_ROOT", "web_data"),
		MongoURI:          mongoURI,
		MongoDatabase:     envOrDefault("MONGO_DB", "messages_db"),
		MessageCollection: envOrDefault("MESSAGE_COLLECTION", "messages"),
		Timeout:           timeout,
		RelayAddr:         envOrDefault("RELAY_ADDR", "localhost:5000"),
		RelayListenAddr:   envOrDefault("RELAY_LISTEN_ADDR", ":5000"),
		RelayReadBuffer:   readBuffer,
		RelayDialTimeout:  dialTimeout,
		RelayCodec:        codec,
		RelayTransport:    transport,
		NatsURL:           envOrDefault("NATS_URL", "nats://localhost:4222"),
		NatsSubject:       envOrDefault("NATS_SUBJECT", "webform.messages"),
		Location:          loc,
		ServerLog:         logger,
	}

	cfg.ServerLog.Printf("loaded config: http=%q relay=%q transport=%q codec=%q db=%q collection=%q",
		cfg.HTTPAddr, cfg.RelayAddr, cfg.RelayTransport, cfg.RelayCodec, cfg.MongoDatabase, cfg.MessageCollection)

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault falls back for unparsable or non-positive values; these
// durations bound every dial and insert, so zero would fail each one.
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
