package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
)

// parseDatabaseURL applies the DATABASE_URL environment variable, when
// set, over the individual postgres_* settings. Managed platforms hand
// out a single URL; this keeps them working without duplicated config.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing DATABASE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w: DATABASE_URL scheme %q", ErrInvalidPostgresHost, u.Scheme)
	}

	host := u.Hostname()
	if host != "" {
		c.PostgresHost = host
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: DATABASE_URL port %q", ErrInvalidPostgresPort, p)
		}
		c.PostgresPort = port
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if len(u.Path) > 1 {
		c.PostgresDBName = u.Path[1:]
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}

// DatabaseURL builds the PostgreSQL connection URL from the individual
// settings.
func (c *Config) DatabaseURL() string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:     "/" + c.PostgresDBName,
		RawQuery: "sslmode=" + c.PostgresSSLMode,
	}
	if c.PostgresUser != "" {
		if c.PostgresPassword != "" {
			u.User = url.UserPassword(c.PostgresUser, c.PostgresPassword)
		} else {
			u.User = url.User(c.PostgresUser)
		}
	}
	return u.String()
}

// Redacted returns the connection URL with the password masked, safe for
// logs.
func (c *Config) Redacted() string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:     "/" + c.PostgresDBName,
		RawQuery: "sslmode=" + c.PostgresSSLMode,
	}
	if c.PostgresUser != "" {
		if c.PostgresPassword != "" {
			u.User = url.UserPassword(c.PostgresUser, "xxxxx")
		} else {
			u.User = url.User(c.PostgresUser)
		}
	}
	return u.String()
}
