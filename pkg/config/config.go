// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultSMTPServer      = "smtp.example.com"
	DefaultSMTPPort        = 587
	DefaultSMTPUsername    = "mail@example.com"
	DefaultSMTPPassword    = "password"
	DefaultSMTPTimeout     = 10 * time.Second
	MaxSMTPTimeout         = time.Hour
	DefaultToEmail         = "mail@example.com"
	DefaultMailSubject     = "Form Submission"
	DefaultListenAddress   = ":5000"
	DefaultMetricsAddress  = ":8081"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 15 * time.Second
	DefaultEnvFile         = ".env"
)

// SMTP holds the Mail Relay settings.
type SMTP struct {
	Host               string `validate:"required,hostname_rfc1123|ip"`
	Port               int    `validate:"min=1,max=65535"`
	Username           string
	Password           string
	// Timeout bounds the dial and every SMTP command of a session.
	Timeout            time.Duration `validate:"min=1s,max=1h"`
	InsecureSkipVerify bool
}

type Mail struct {
	// To is the single fixed recipient of every submission.
	To         string `validate:"required,email"`
	// From must be an email address unless it is derived from the SMTP
	// username, which some providers set to a login name such as "apikey".
	From       string `validate:"required"`
	SenderName string
	Subject    string `validate:"required"`
}

type Server struct {
	ListenAddress      string `validate:"required"`
	TLSCertFile        string `validate:"required_with=TLSKeyFile"`
	TLSKeyFile         string `validate:"required_with=TLSCertFile"`
	TrustedProxies     []string
	CORSAllowedOrigins []string
	MaxBodyBytes       int64         `validate:"min=1"`
	ShutdownTimeout    time.Duration `validate:"min=0"`
}

type Metrics struct {
	// BindAddress is where /metrics is served. Empty or "0" disables it.
	BindAddress string
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	SMTP    SMTP
	Mail    Mail
	Server  Server
	Metrics Metrics
	Debug   bool
}

// Load reads the configuration from the process environment. If envFile names
// an existing dotenv file its values are used for variables that are not set
// in the environment. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	var err error

	cfg.SMTP.Host = getEnvString("SMTP_SERVER", DefaultSMTPServer)
	if cfg.SMTP.Port, err = getEnvInt("SMTP_PORT", DefaultSMTPPort); err != nil {
		return Config{}, err
	}
	cfg.SMTP.Username = getEnvString("SMTP_USERNAME", DefaultSMTPUsername)
	cfg.SMTP.Password = getEnvString("SMTP_PASSWORD", DefaultSMTPPassword)
	timeoutSeconds, err := getEnvInt("SMTP_TIMEOUT", int(DefaultSMTPTimeout/time.Second))
	if err != nil {
		return Config{}, err
	}
	if timeoutSeconds < 0 || timeoutSeconds > int(MaxSMTPTimeout/time.Second) {
		return Config{}, fmt.Errorf("invalid SMTP_TIMEOUT %q: expected 0 to %d seconds",
			os.Getenv("SMTP_TIMEOUT"), int(MaxSMTPTimeout/time.Second))
	}
	cfg.SMTP.Timeout = time.Duration(timeoutSeconds) * time.Second
	if cfg.SMTP.InsecureSkipVerify, err = getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false); err != nil {
		return Config{}, err
	}

	cfg.Mail.To = getEnvString("TO_EMAIL", DefaultToEmail)
	cfg.Mail.From = getEnvString("FROM_EMAIL", "")
	cfg.Mail.SenderName = getEnvString("SENDER_NAME", "")
	cfg.Mail.Subject = getEnvString("MAIL_SUBJECT", "")

	cfg.Server.ListenAddress = getEnvString("LISTEN_ADDRESS", DefaultListenAddress)
	cfg.Server.TLSCertFile = getEnvString("TLS_CERT_FILE", "")
	cfg.Server.TLSKeyFile = getEnvString("TLS_KEY_FILE", "")
	cfg.Server.TrustedProxies = getEnvList("TRUSTED_PROXIES")
	cfg.Server.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS")
	maxBody, err := getEnvInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.Server.MaxBodyBytes = int64(maxBody)
	if cfg.Server.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout); err != nil {
		return Config{}, err
	}

	cfg.Metrics.BindAddress = getEnvString("METRICS_BIND_ADDRESS", DefaultMetricsAddress)
	if cfg.Debug, err = getEnvBool("DEBUG", false); err != nil {
		return Config{}, err
	}

	cfg.Defaults()
	return cfg, nil
}

// Defaults fills derived and empty values. It is idempotent.
func (c *Config) Defaults() {
	if c.SMTP.Port == 0 {
		c.SMTP.Port = DefaultSMTPPort
	}
	if c.SMTP.Timeout == 0 {
		c.SMTP.Timeout = DefaultSMTPTimeout
	}
	if c.Mail.From == "" {
		c.Mail.From = c.SMTP.Username
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = DefaultMailSubject
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks the configuration and reports every invalid field at once.
func (c Config) Validate() error {
	v := validator.New()
	v.RegisterStructValidation(validateSender, Config{})
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Never echo the value: it may be a credential.
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func validateSender(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Mail.From == "" || c.Mail.From == c.SMTP.Username {
		return
	}
	if err := sl.Validator().Var(c.Mail.From, "email"); err != nil {
		sl.ReportError(c.Mail.From, "Mail.From", "From", "email", "")
	}
}

// MetricsEnabled reports whether the metrics listener should be started.
func (c Config) MetricsEnabled() bool {
	return c.Metrics.BindAddress != "" && c.Metrics.BindAddress != "0"
}

// Print logs the effective configuration. The SMTP password is never logged,
// only whether one is set.
func (c Config) Print(log *zap.SugaredLogger) {
	log.Infow("Configuration",
		"smtp_server", c.SMTP.Host,
		"smtp_port", c.SMTP.Port,
		"smtp_username", c.SMTP.Username,
		"smtp_password_set", c.SMTP.Password != "",
		"smtp_timeout", c.SMTP.Timeout.String(),
		"smtp_insecure_skip_verify", c.SMTP.InsecureSkipVerify,
		"to_email", c.Mail.To,
		"from_email", c.Mail.From,
		"sender_name", c.Mail.SenderName,
		"mail_subject", c.Mail.Subject,
		"listen_address", c.Server.ListenAddress,
		"tls_enabled", c.Server.TLSCertFile != "" && c.Server.TLSKeyFile != "",
		"trusted_proxies", c.Server.TrustedProxies,
		"cors_allowed_origins", c.Server.CORSAllowedOrigins,
		"max_body_bytes", c.Server.MaxBodyBytes,
		"shutdown_timeout", c.Server.ShutdownTimeout.String(),
		"metrics_bind_address", c.Metrics.BindAddress,
		"debug", c.Debug,
	)
}
