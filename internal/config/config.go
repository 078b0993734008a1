package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Liquidation sweep
	SweepIntervalSecs int
	SystemActorID     string

	// Ledger accounts and oracle
	EscrowAccountID string
	OraclePriceKey  string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loanledger"),
		MySQLUser: getenv("MYSQL_USER", "loanledger"),
		MySQLPass: getenv("MYSQL_PASS", "loanledger"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		SweepIntervalSecs: getenvInt("SWEEP_INTERVAL_SECONDS", 15),
		SystemActorID:     getenv("SYSTEM_ACTOR_ID", "00000000000000000000000000000001"),

		EscrowAccountID: getenv("ESCROW_ACCOUNT_ID", "00000000000000000000000000000000"),
		OraclePriceKey:  getenv("ORACLE_PRICE_KEY", "oracle:price:collateral"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	return c
}

var reAccountID = regexp.MustCompile(`^[a-f0-9]{32}$`)

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.SweepIntervalSecs <= 0 {
		return errors.New("SWEEP_INTERVAL_SECONDS must be positive")
	}
	if !reAccountID.MatchString(c.EscrowAccountID) {
		return fmt.Errorf("invalid ESCROW_ACCOUNT_ID %q: want 32 lowercase hex chars", c.EscrowAccountID)
	}
	if !reAccountID.MatchString(c.SystemActorID) {
		return fmt.Errorf("invalid SYSTEM_ACTOR_ID %q: want 32 lowercase hex chars", c.SystemActorID)
	}
	if c.OraclePriceKey == "" {
		return errors.New("missing ORACLE_PRICE_KEY")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
