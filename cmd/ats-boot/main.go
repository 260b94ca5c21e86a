// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ats-boot (re)starts the TDAQ processes of a digitizer DAQ,
// optionally monitoring them with pmon.
//
// Usage:
//
//	ats-boot [options] [cmd1 [cmd2 [...]]]
//
// Without arguments, ats-boot starts tdaq-runctl and ats-srv.
package main // import "github.com/go-lpc/alazar/cmd/ats-boot"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

var (
	defaultCmds = []string{"tdaq-runctl", "ats-srv"}

	doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
	doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")
	doKill = flag.Bool("kill", true, "kill previous instances of the processes")
	logDir = flag.String("o", os.Getenv("ATSLOGDIR"), "directory holding the log files")
)

type config struct {
	dir  string
	mon  bool
	freq time.Duration
	kill bool
}

func main() {
	flag.Parse()

	log.SetPrefix("ats-boot: ")
	log.SetFlags(0)

	args := flag.Args()
	if len(args) == 0 {
		args = defaultCmds
	}

	cmds := make([]*exec.Cmd, len(args))
	for i, arg := range args {
		fields := strings.Fields(arg)
		cmds[i] = exec.Command(fields[0], fields[1:]...)
	}

	cfg := config{
		dir:  *logDir,
		mon:  *doMon,
		freq: *doFreq,
		kill: *doKill,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	err := run(cfg, cmds, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(cfg config, cmds []*exec.Cmd, stop chan os.Signal) error {
	if cfg.kill {
		for _, cmd := range cmds {
			name := filepath.Base(cmd.Path)
			kill := exec.Command("killall", name)
			kill.Stderr = os.Stderr
			kill.Stdout = os.Stdout
			err := kill.Run()
			if err != nil {
				log.Printf("could not kill %q: %+v", name, err)
			}
		}
	}

	if cfg.dir == "" {
		cfg.dir = "/var/log/alazar"
	}

	err := os.MkdirAll(cfg.dir, 0755)
	if err != nil {
		return fmt.Errorf("could not create log directory %q: %w", cfg.dir, err)
	}

	var (
		grp  errgroup.Group
		kill = make(chan int)
	)
	for _, cmd := range cmds {
		cmd := cmd
		grp.Go(func() error {
			return start(cfg, cmd, kill)
		})
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-stop:
			close(kill)
		case <-done:
		}
	}()

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("could not boot DAQ: %w", err)
	}
	return nil
}

func start(cfg config, cmd *exec.Cmd, kill chan int) error {
	name := filepath.Base(cmd.Path)
	out, err := os.Create(filepath.Join(cfg.dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	errch := make(chan error, 1)
	go func() {
		errch <- cmd.Wait()
	}()

	if cfg.mon {
		stop, err := monitor(cfg, name, cmd.Process.Pid)
		if err != nil {
			_ = cmd.Process.Kill()
			<-errch
			return err
		}
		defer stop()
	}

	select {
	case <-kill:
		err = cmd.Process.Kill()
		if err != nil {
			return fmt.Errorf("could not kill %q: %+v", name, err)
		}
		<-errch
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", name, err)
		}
	}

	return nil
}

// monitor starts collecting pmon data for the process pid.
// The returned function stops the monitoring.
func monitor(cfg config, name string, pid int) (func(), error) {
	p, err := pmon.Monitor(pid)
	if err != nil {
		return nil, fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, pid, err)
	}

	f, err := os.Create(filepath.Join(cfg.dir, name+"-pmon.log"))
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file for command %q: %w", name, err)
	}
	p.W = f
	p.Freq = cfg.freq

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("run pmon %q...", name)
		err := p.Run()
		if err != nil {
			log.Printf("could not monitor %q: %+v", name, err)
		}
	}()

	return func() {
		err := p.Kill()
		if err != nil {
			log.Printf("could not stop monitoring %q: %+v", name, err)
		}
		select {
		case <-done:
		case <-time.After(2*cfg.freq + time.Second):
		}
		_ = f.Close()
	}, nil
}
