// Package doctor verifies the environment the tool depends on: the external
// binaries it shells out to or configures, the persisted configuration, the
// generated SSH keys, and the managed SSH config file.
package doctor

import (
	"errors"
	"fmt"
	"os/exec"

	"gitid/internal/profile"
	"gitid/internal/sshconf"
	"gitid/pkg/fileops"
)

// ErrMissingDependency indicates a required external binary is absent from
// PATH.
var ErrMissingDependency = errors.New("required dependency not found")

// requiredBinaries are the external programs profiles depend on. git is
// configured by the tool, ssh executes core.sshCommand, ssh-keygen is the
// operator's manual fallback for key management.
var requiredBinaries = []string{"git", "ssh", "ssh-keygen"}

// Check is one verification with its result.
type Check struct {
	Name   string
	OK     bool
	Detail string // human-readable explanation, set when not OK (or as info)
}

// Report is the outcome of a full examination.
type Report struct {
	Checks []Check
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckDependencies verifies the required binaries exist on PATH. It returns
// ErrMissingDependency naming the first absent one, so commands can fail
// fast before touching any state.
func CheckDependencies() error {
	for _, bin := range requiredBinaries {
		if _, err := lookPath(bin); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingDependency, bin)
		}
	}
	return nil
}

// Examine runs every check against the loaded store and the managed SSH
// config at sshPath. A nil store means configuration is missing; the
// remaining checks still run so the report is complete.
func Examine(store *profile.Store, sshPath string) Report {
	var r Report

	for _, bin := range requiredBinaries {
		p, err := lookPath(bin)
		if err != nil {
			r.add(bin, false, "not found on PATH")
			continue
		}
		r.add(bin, true, p)
	}

	if store == nil {
		r.add("configuration", false, "not configured, run setup")
		return r
	}
	r.add("configuration", true, profile.ConfigPath())

	for _, p := range store.Profiles() {
		if !p.Configured() {
			r.add("profile "+p.Name, false, "missing name or email, run setup")
			continue
		}
		r.add("profile "+p.Name, true, fmt.Sprintf("%s <%s>", p.GitUserName, p.GitUserEmail))
	}

	if store.RootFolder == "" {
		r.add("work folder", false, "not set, every repository resolves to personal")
	} else if !fileops.DirExists(store.RootFolder) {
		r.add("work folder", false, store.RootFolder+" does not exist")
	} else {
		r.add("work folder", true, store.RootFolder)
	}

	for _, p := range store.Profiles() {
		name := "key " + p.Name
		if !fileops.Exists(p.KeyPath()) {
			r.add(name, false, p.KeyPath()+" missing, run keygen")
			continue
		}
		r.add(name, true, p.KeyPath())
	}

	drifts, err := sshconf.Inspect(store, sshPath)
	if err != nil {
		r.add("ssh config", false, err.Error())
		return r
	}
	for _, d := range drifts {
		name := "ssh host " + d.Host
		switch {
		case d.Missing:
			r.add(name, false, "no stanza, run ssh-config --apply")
		case !d.InSync():
			r.add(name, false, fmt.Sprintf("identity is %s, want %s", d.IdentityFile, d.WantIdentity))
		default:
			r.add(name, true, d.IdentityFile)
		}
	}

	return r
}

func (r *Report) add(name string, ok bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: detail})
}
