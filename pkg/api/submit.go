// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/form-relay/pkg/apiresponses"
	"github.com/telekom/form-relay/pkg/config"
	"github.com/telekom/form-relay/pkg/mail"
	"github.com/telekom/form-relay/pkg/metrics"
	"github.com/telekom/form-relay/pkg/system"
)

const (
	submitPath = "/submit"

	msgAccepted           = "Data received successfully"
	msgInvalidContentType = "Invalid content type. Expected application/json"
	msgInvalidJSON        = "Invalid JSON provided"
	msgNoData             = "No data provided"
	msgBodyTooLarge       = "Request body too large"
	msgSendFailed         = "Failed to send email"
	msgInternalError      = "An internal error occurred"
)

var (
	errTrailingData = errors.New("unexpected data after JSON value")
	errInvalidUTF8  = errors.New("JSON text is not valid UTF-8")
)

// SubmissionResponse is returned for an accepted submission. Data echoes the
// payload exactly as received.
type SubmissionResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// SubmissionController accepts a JSON payload and relays it by mail to the
// configured recipient.
type SubmissionController struct {
	log          *zap.SugaredLogger
	sender       mail.Sender
	recipient    string
	subject      string
	maxBodyBytes int64
}

func NewSubmissionController(log *zap.SugaredLogger, cfg config.Config, sender mail.Sender) *SubmissionController {
	return &SubmissionController{
		log:          log.Named("submit"),
		sender:       sender,
		recipient:    cfg.Mail.To,
		subject:      cfg.Mail.Subject,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
	}
}

func (sc *SubmissionController) BasePath() string {
	return submitPath
}

func (sc *SubmissionController) Handlers() []gin.HandlerFunc {
	return nil
}

func (sc *SubmissionController) Register(rg *gin.RouterGroup) error {
	rg.POST("", sc.handleSubmit)
	return nil
}

func (sc *SubmissionController) handleSubmit(c *gin.Context) {
	reqLog := system.GetReqLogger(c, sc.log)

	if !isJSONContentType(c.ContentType()) {
		reqLog.Warnw("Request content type is not JSON", "contentType", c.GetHeader("Content-Type"))
		sc.reject(c, apiresponses.RespondBadRequest, msgInvalidContentType)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, sc.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reqLog.Warnw("Request body exceeds limit", "limit", sc.maxBodyBytes)
			sc.reject(c, apiresponses.RespondRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		reqLog.Warnw("Failed to read request body", "error", err)
		sc.reject(c, apiresponses.RespondBadRequest, msgInvalidJSON)
		return
	}

	payload, err := decodePayload(raw)
	if err != nil {
		reqLog.Warnw("Invalid JSON in request body", "error", err)
		sc.reject(c, apiresponses.RespondBadRequest, msgInvalidJSON)
		return
	}
	if isEmptyPayload(payload) {
		reqLog.Warn("No data provided in the request")
		sc.reject(c, apiresponses.RespondBadRequest, msgNoData)
		return
	}

	data := compactJSON(raw)
	reqLog.Infow("Received data", "data", string(data))

	if err := sc.sender.Send(sc.recipient, sc.subject, data); err != nil {
		// the sender already logged the failure with its stage
		reqLog.Errorw("Submission could not be relayed", "error", err)
		metrics.Submissions.WithLabelValues(metrics.OutcomeSendFailed).Inc()
		apiresponses.RespondInternalErrorSimple(c, msgSendFailed)
		return
	}

	metrics.Submissions.WithLabelValues(metrics.OutcomeAccepted).Inc()
	apiresponses.RespondOK(c, SubmissionResponse{Message: msgAccepted, Data: data})
}

func (sc *SubmissionController) reject(c *gin.Context, respond func(*gin.Context, string), message string) {
	metrics.Submissions.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
	respond(c, message)
}

// isJSONContentType accepts application/json and structured syntax suffix
// types such as application/problem+json. ct has its parameters stripped.
func isJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "application/json" {
		return true
	}
	return strings.HasPrefix(ct, "application/") && strings.HasSuffix(ct, "+json")
}

// decodePayload parses exactly one JSON value. Numbers are kept as
// json.Number so large integers are not rounded. encoding/json tolerates
// invalid UTF-8 inside strings, so the raw bytes are checked first.
func decodePayload(raw []byte) (any, error) {
	if !utf8.Valid(raw) {
		return nil, errInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// isEmptyPayload reports whether v is one of null, false, zero, "", [] or {}.
func isEmptyPayload(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err == nil && f == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func compactJSON(raw []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return json.RawMessage(raw)
	}
	return json.RawMessage(buf.Bytes())
}
