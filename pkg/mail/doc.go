// Package mail implements the Mail Relay: it composes a plain-text message with
// gomail and delivers it over a fresh STARTTLS-protected SMTP session per call.
package mail
