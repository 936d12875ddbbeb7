package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote endpoint address in format [host]:[port]
//	-s local storage path (SQLite database file)
//	-c/-config json file path with configs
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-sync-interval periodic sync interval (e.g., "5m")
//	-probe-interval connectivity probe interval (e.g., "30s")
//	-max-retries retry attempts for network failures
//	-backoff-base first retry delay (e.g., "500ms")
//	-backoff-cap upper bound for retry delays (e.g., "30s")
func ParseFlags() *Config {
	var remoteAddress NetAddress
	var storagePath string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var probeInterval time.Duration
	var maxRetries int
	var backoffBase time.Duration
	var backoffCap time.Duration

	flag.Var(&remoteAddress, "a", "Remote endpoint address host:port")
	flag.StringVar(&storagePath, "s", "", "Local storage path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 30s)")
	flag.IntVar(&maxRetries, "max-retries", 0, "Retry attempts for network failures")
	flag.DurationVar(&backoffBase, "backoff-base", 0, "First retry delay (e.g., 500ms)")
	flag.DurationVar(&backoffCap, "backoff-cap", 0, "Upper bound for retry delays (e.g., 30s)")

	flag.Parse()

	return &Config{
		Remote: Remote{
			Address:        remoteAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			Path: storagePath,
		},
		Sync: Sync{
			MaxRetries:  maxRetries,
			BackoffBase: backoffBase,
			BackoffCap:  backoffCap,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			ProbeInterval: probeInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless the host is a
// DNS name, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	// Numeric-looking hosts must be well-formed IPs; anything else is
	// taken as a DNS name and left to the resolver.
	if host != "localhost" && strings.IndexFunc(host, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }) == -1 {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
