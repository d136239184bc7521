package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// Config holds all pipeline configuration.
type Config struct {
	// Input capture file (gzip-compressed ITCH 5.0), first positional arg.
	Input string

	// Output CSV path. Defaults to the input path with a .csv suffix.
	Output string

	// Progress log cadence in bytes consumed (0 = off).
	ProgressBytes int64

	// MongoDB persistence (opt-in: only active when URI is set).
	MongoURI string

	// Monitoring server (opt-in: only active when addr is set).
	ServeAddr      string
	SendBufferSize int

	// Trade tape archive (opt-in: only active when dir is set).
	ArchiveDir   string
	ArchiveMaxGB int
}

func Load() *Config {
	c := &Config{}

	flag.StringVar(&c.Output, "out", envStr("VWAP_OUT", ""), "Output CSV path (default: <input>.csv)")
	flag.Int64Var(&c.ProgressBytes, "progress", envInt64("VWAP_PROGRESS_BYTES", 100<<20), "Bytes between progress log lines (0 = off)")

	flag.StringVar(&c.MongoURI, "mongo-uri", envStr("MONGO_URI", ""), "MongoDB connection URI for report persistence (empty = disabled)")

	flag.StringVar(&c.ServeAddr, "serve", envStr("VWAP_SERVE", ""), "Monitoring server listen address, e.g. :8100 (empty = disabled)")
	flag.IntVar(&c.SendBufferSize, "send-buffer", envInt("SEND_BUFFER", 4096), "Per-client send buffer size")

	flag.StringVar(&c.ArchiveDir, "archive-dir", envStr("VWAP_ARCHIVE_DIR", ""), "Directory for gzipped trade tape archives (empty = disabled)")
	flag.IntVar(&c.ArchiveMaxGB, "archive-max-gb", envInt("VWAP_ARCHIVE_MAX_GB", 4), "Max total archive size before oldest files rotate out")

	flag.Parse()

	c.Input = flag.Arg(0)
	if c.Output == "" && c.Input != "" {
		c.Output = strings.TrimSuffix(c.Input, ".gz") + ".csv"
	}

	return c
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
