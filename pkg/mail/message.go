// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// compose renders the full RFC 5322 message for one recipient.
func (s *sender) compose(to, subject string, body any) ([]byte, error) {
	text, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	if s.senderName != "" {
		msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	} else {
		msg.SetHeader("From", s.senderAddress)
	}
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("rendering message: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeBody turns the body into plain text. Strings pass through unchanged;
// raw JSON is compacted; any other value is marshalled to compact JSON.
func encodeBody(body any) (string, error) {
	switch b := body.(type) {
	case string:
		return b, nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return "", fmt.Errorf("compacting JSON body: %w", err)
		}
		return buf.String(), nil
	case []byte:
		return string(b), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(b); err != nil {
			return "", fmt.Errorf("encoding JSON body: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	}
}
