// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"errors"
	"fmt"
)

// Stage names the step of an SMTP session at which delivery failed.
type Stage string

const (
	StageCompose  Stage = "compose"
	StageConnect  Stage = "connect"
	StageStartTLS Stage = "starttls"
	StageAuth     Stage = "auth"
	StageSend     Stage = "send"
	StageInternal Stage = "internal"
)

var ErrStartTLSUnsupported = errors.New("smtp server does not support STARTTLS")

// DeliveryError is the only error type returned by Sender.Send.
type DeliveryError struct {
	Stage Stage
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mail delivery failed at %s: %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
