// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/telekom/form-relay/pkg/config"
	"github.com/telekom/form-relay/pkg/metrics"
)

// Sender delivers a single message per call. A nil error means the SMTP server
// accepted the message; any failure is reported as a *DeliveryError.
type Sender interface {
	Send(to, subject string, body any) error
	GetHost() string
	GetPort() int
}

const localName = "localhost"

// Option customises a sender built by NewSender.
type Option func(*sender)

// WithTLSConfig overrides the TLS configuration used for STARTTLS. ServerName
// defaults to the SMTP host when left empty.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *sender) {
		s.tlsConfig = cfg
	}
}

type sender struct {
	host               string
	port               int
	username           string
	password           string
	timeout            time.Duration
	insecureSkipVerify bool
	tlsConfig          *tls.Config

	senderAddress string
	senderName    string

	log *zap.SugaredLogger
}

func NewSender(cfg config.Config, log *zap.SugaredLogger, opts ...Option) Sender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("mail")
	log.Infow("Initializing mail sender",
		"host", cfg.SMTP.Host,
		"port", cfg.SMTP.Port,
		"user", cfg.SMTP.Username,
		"timeout", cfg.SMTP.Timeout.String())
	if cfg.SMTP.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for the STARTTLS connection")
	}

	timeout := cfg.SMTP.Timeout
	if timeout <= 0 {
		timeout = config.DefaultSMTPTimeout
	}
	senderAddr := cfg.Mail.From
	if senderAddr == "" {
		senderAddr = cfg.SMTP.Username
	}

	s := &sender{
		host:               cfg.SMTP.Host,
		port:               cfg.SMTP.Port,
		username:           cfg.SMTP.Username,
		password:           cfg.SMTP.Password,
		timeout:            timeout,
		insecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		senderAddress:      senderAddr,
		senderName:         cfg.Mail.SenderName,
		log:                log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send composes the message and runs one SMTP session for it. It never panics
// and never retries.
func (s *sender) Send(to, subject string, body any) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &DeliveryError{Stage: StageInternal, Err: fmt.Errorf("panic: %v", r)}
		}
		metrics.MailSendDuration.WithLabelValues(s.host).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.MailSendFailure.WithLabelValues(s.host).Inc()
			s.logFailure(to, err)
			return
		}
		metrics.MailSendSuccess.WithLabelValues(s.host).Inc()
		s.log.Infow("Email sent successfully", "to", to, "duration", time.Since(start).String())
	}()

	msg, err := s.compose(to, subject, body)
	if err != nil {
		return &DeliveryError{Stage: StageCompose, Err: err}
	}
	return s.deliver(to, msg)
}

func (s *sender) deliver(to string, msg []byte) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	raw, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return &DeliveryError{Stage: StageConnect, Err: err}
	}
	conn := newTimeoutConn(raw, s.timeout)

	// Greeting, EHLO and the STARTTLS upgrade happen in one call.
	c, err := smtp.NewClientStartTLS(conn, s.startTLSConfig())
	if err != nil {
		return startTLSError(err, conn.startTLSSent())
	}
	c.CommandTimeout = s.timeout
	c.SubmissionTimeout = s.timeout
	defer c.Close()

	// The TLS handshake is lazy; the EHLO after the upgrade completes it and
	// refreshes the extension list.
	if err := c.Hello(localName); err != nil {
		return &DeliveryError{Stage: StageStartTLS, Err: err}
	}

	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return &DeliveryError{Stage: StageAuth, Err: err}
		}
	}
	if err := c.SendMail(s.senderAddress, []string{to}, bytes.NewReader(msg)); err != nil {
		return &DeliveryError{Stage: StageSend, Err: err}
	}
	// The message is already accepted at this point.
	if err := c.Quit(); err != nil {
		s.log.Debugw("QUIT after successful delivery failed", "error", err)
	}
	return nil
}

// startTLSError attributes a failure of the greeting/EHLO/STARTTLS exchange to
// a stage. Before the STARTTLS command is sent, protocol and network errors
// belong to the connect stage; any other error means the server did not
// advertise STARTTLS.
func startTLSError(err error, sent bool) error {
	if sent {
		return &DeliveryError{Stage: StageStartTLS, Err: err}
	}
	var smtpErr *smtp.SMTPError
	var netErr net.Error
	if errors.As(err, &smtpErr) || errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DeliveryError{Stage: StageConnect, Err: err}
	}
	return &DeliveryError{Stage: StageStartTLS, Err: fmt.Errorf("%w: %v", ErrStartTLSUnsupported, err)}
}

func (s *sender) startTLSConfig() *tls.Config {
	var cfg *tls.Config
	if s.tlsConfig != nil {
		cfg = s.tlsConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = s.host
	}
	if s.insecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

func (s *sender) logFailure(to string, err error) {
	fields := []interface{}{"to", to, "host", s.host, "port", s.port, "error", err}
	var derr *DeliveryError
	if errors.As(err, &derr) {
		fields = append(fields, "stage", string(derr.Stage))
	}
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		fields = append(fields, "smtpCode", smtpErr.Code)
		s.log.Errorw("SMTP error occurred", fields...)
		return
	}
	s.log.Errorw("Failed to send email", fields...)
}

func (s *sender) GetHost() string {
	return s.host
}

func (s *sender) GetPort() int {
	return s.port
}
