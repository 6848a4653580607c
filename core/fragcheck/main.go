// Package fragcheck implements the bluestore allocator fragmentation probe.
//
// The probe resolves the target host, lists the up osds bound to its address
// in the `ceph osd dump` report, queries each osd allocator score and folds
// the samples into a single monitoring status.
package fragcheck

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/opensvc/check-ceph-osd-frag/core/nagios"
	"github.com/opensvc/check-ceph-osd-frag/util/command"
	"github.com/opensvc/check-ceph-osd-frag/util/file"
	"github.com/opensvc/check-ceph-osd-frag/util/getaddr"
)

type (
	// T is the probe configuration.
	T struct {
		// Exe is the ceph executable invocation. Shlex-split, so a
		// wrapper like "sudo /usr/bin/ceph" is accepted.
		Exe string

		// AdmExe is the cephadm executable invocation, used when
		// Cephadm is true.
		AdmExe string

		// Conf is an alternative ceph conf file path.
		Conf string

		// MonAddress is the ceph monitor address, with optional port.
		MonAddress string

		// ID is the ceph client id to authenticate with.
		ID string

		// Keyring is the ceph client keyring file path.
		Keyring string

		// Host is the name or address of the host whose osds are probed.
		Host string

		// Critical is the fragmentation percentage at or above which an
		// osd makes the probe status CRITICAL.
		Critical float64

		// Cephadm routes the ceph invocation through "cephadm shell".
		Cephadm bool

		// Timeout bounds each external command. Zero means no bound.
		Timeout time.Duration

		Log *zerolog.Logger
	}
)

const (
	DefaultExe      = "/usr/bin/ceph"
	DefaultAdmExe   = "/usr/sbin/cephadm"
	DefaultCritical = 60.0

	// cephadm shell prepends pull/inspect boilerplate on stderr
	cephadmStderrSkip = 4
)

// Run executes the whole pipeline and returns the status and the body of the
// plugin output line.
func (t *T) Run() (nagios.T, string) {
	if err := t.preflight(); err != nil {
		return nagios.Unknown, err.Error()
	}
	addr, err := t.resolveAddr()
	if err != nil {
		if t.Log != nil {
			t.Log.Debug().Err(err).Str("host", t.Host).Msg("host resolution")
		}
		return nagios.Unknown, fmt.Sprintf("could not resolve %s", t.Host)
	}
	base, err := t.baseArgs()
	if err != nil {
		return nagios.Unknown, err.Error()
	}
	osds, err := t.discover(base, addr)
	if err != nil {
		return nagios.Critical, err.Error()
	}
	return t.score(base, osds)
}

// preflight verifies the configured files before any external invocation.
// Any error here maps to the UNKNOWN status.
func (t T) preflight() error {
	exe := t.Exe
	if t.Cephadm {
		exe = t.AdmExe
	}
	argv, err := command.CmdArgsFromString(exe)
	if err != nil {
		return err
	}
	if err := lookExe(argv[0]); err != nil {
		return err
	}
	if t.Conf != "" && !file.Exists(t.Conf) {
		return errors.Errorf("ceph conf file %s does not exist", t.Conf)
	}
	if t.Keyring != "" && !file.Exists(t.Keyring) {
		return errors.Errorf("keyring file %s does not exist", t.Keyring)
	}
	if t.Host == "" {
		return errors.New("no host given")
	}
	return nil
}

func lookExe(p string) error {
	if filepath.IsAbs(p) {
		if v, err := file.ExistsAndRegular(p); err != nil {
			return err
		} else if !v {
			return errors.Errorf("executable %s does not exist", p)
		}
		return nil
	}
	if _, err := exec.LookPath(p); err != nil {
		return errors.Errorf("executable %s not found in PATH", p)
	}
	return nil
}

// resolveAddr returns the preferred address of Host as a literal suitable
// for matching against the osd dump report. IPv6 addresses are bracketed.
func (t T) resolveAddr() (string, error) {
	ips, err := getaddr.Lookup(t.Host)
	if err != nil {
		return "", err
	}
	if len(ips) > 1 && t.Log != nil {
		t.Log.Debug().Str("host", t.Host).Int("count", len(ips)).Msg("multiple addresses, using the first")
	}
	ip := ips[0]
	if ip.To4() == nil {
		return "[" + ip.String() + "]", nil
	}
	return ip.String(), nil
}

// baseArgs returns the argument vector common to all ceph sub-invocations.
// Callers must extend copies, never the returned slice itself.
func (t T) baseArgs() ([]string, error) {
	exeArgs, err := command.CmdArgsFromString(t.Exe)
	if err != nil {
		return nil, err
	}
	var args []string
	if t.Cephadm {
		admArgs, err := command.CmdArgsFromString(t.AdmExe)
		if err != nil {
			return nil, err
		}
		args = append(args, admArgs...)
		args = append(args, "shell")
		if t.Keyring != "" {
			args = append(args, "-v", t.Keyring+":"+t.Keyring+":ro")
		}
		args = append(args, "--")
		args = append(args, exeArgs...)
	} else {
		args = append(args, exeArgs...)
	}
	if t.MonAddress != "" {
		args = append(args, "-m", t.MonAddress)
	}
	if t.Conf != "" {
		args = append(args, "-c", t.Conf)
	}
	if t.ID != "" {
		args = append(args, "--id", t.ID)
	}
	if t.Keyring != "" {
		args = append(args, "--keyring", t.Keyring)
	}
	return args, nil
}

// extend returns a new vector so appending never mutates base.
func extend(base []string, extra ...string) []string {
	args := make([]string, 0, len(base)+len(extra))
	args = append(args, base...)
	return append(args, extra...)
}

func (t T) runTool(args []string) (stdout, stderr []byte, err error) {
	cmd := command.New(
		command.WithName(args[0]),
		command.WithArgs(args[1:]),
		command.WithLogger(t.Log),
		command.WithTimeout(t.Timeout),
		command.WithStdoutLogLevel(zerolog.DebugLevel),
		command.WithStderrLogLevel(zerolog.DebugLevel),
		command.WithBufferedStdout(),
		command.WithBufferedStderr(),
	)
	err = cmd.Run()
	return cmd.Stdout(), cmd.Stderr(), err
}

// failMsg renders the error text of a failed ceph invocation. In cephadm
// mode the wrapper boilerplate heading stderr is stripped.
func (t T) failMsg(stderr []byte, err error) string {
	s := strings.TrimRight(string(stderr), "\n")
	if t.Cephadm {
		lines := strings.Split(s, "\n")
		if len(lines) <= cephadmStderrSkip {
			s = ""
		} else {
			s = strings.Join(lines[cephadmStderrSkip:], "\n")
		}
	}
	if s == "" && err != nil {
		s = err.Error()
	}
	return s
}
