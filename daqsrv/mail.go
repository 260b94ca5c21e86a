// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daqsrv

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	mail "gopkg.in/gomail.v2"
)

// MailConfig describes how acquisition failures are reported by mail.
type MailConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	To       []string
}

// MailConfigFromEnv returns the mail configuration held by the
// MAIL_SERVER, MAIL_PORT, MAIL_USERNAME, MAIL_PASSWORD and MAIL_TGTS
// environment variables.
func MailConfigFromEnv() MailConfig {
	port, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	var tgts []string
	for _, v := range strings.Split(os.Getenv("MAIL_TGTS"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			tgts = append(tgts, v)
		}
	}
	return MailConfig{
		Server:   os.Getenv("MAIL_SERVER"),
		Port:     port,
		User:     os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		To:       tgts,
	}
}

func (cfg MailConfig) valid() bool {
	return cfg.Server != "" && cfg.Port != 0 &&
		cfg.User != "" && cfg.Password != "" &&
		len(cfg.To) > 0
}

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

type alerter struct {
	cfg  MailConfig
	dial sender
}

func newAlerter(cfg MailConfig) *alerter {
	dial := mail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Password)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return &alerter{cfg: cfg, dial: dial}
}

func (a *alerter) send(name string, run uint32, cause error) error {
	if !a.cfg.valid() {
		return fmt.Errorf("daqsrv: could not send mail alert: missing credentials")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", a.cfg.User)
	msg.SetHeader("Bcc", a.cfg.To...)
	msg.SetHeader("Subject", fmt.Sprintf("[%s] acquisition failure (run=%d)", name, run))
	msg.SetBody("text/plain", fmt.Sprintf("run:   %d\ndate:  %s\nerror: %+v\n",
		run, time.Now().UTC().Format(time.RFC3339), cause,
	))

	err := a.dial.DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("daqsrv: could not send mail alert: %w", err)
	}
	return nil
}
