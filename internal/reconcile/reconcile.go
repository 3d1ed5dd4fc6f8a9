// Package reconcile makes a repository's persisted git/SSH state match a
// resolved target profile. The engine is a small state machine over the
// remote URL's classification: unrecognized URLs are never touched, bare
// upstream URLs get bound to a profile, bound URLs get switched when a
// different target is chosen and are a strict no-op otherwise.
package reconcile

import (
	"errors"
	"fmt"

	"gitid/internal/gitrepo"
	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/remote"
)

// Outcome describes what reconciliation did.
type Outcome int

const (
	// OutcomeLeftAlone: the URL targets an unrecognized host and was not touched.
	OutcomeLeftAlone Outcome = iota
	// OutcomeUnchanged: the URL was already bound to the chosen profile; no write occurred.
	OutcomeUnchanged
	// OutcomeBound: a bare upstream URL was bound to the chosen profile.
	OutcomeBound
	// OutcomeSwitched: a URL bound to one profile was rebound to another.
	OutcomeSwitched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeBound:
		return "bound"
	case OutcomeSwitched:
		return "switched"
	default:
		return "already customized, left alone"
	}
}

// Result reports a reconciliation to the caller.
type Result struct {
	OldURL         string
	NewURL         string
	ProfileApplied string // empty when nothing was written
	Outcome        Outcome
}

// ChooseProfile supplies the target profile when the engine needs one. The
// current classification is passed so interactive callers can show what the
// URL is bound to today.
type ChooseProfile func(current remote.Classification) (string, error)

// Fixed returns a chooser that always picks the given profile.
func Fixed(name string) ChooseProfile {
	return func(remote.Classification) (string, error) {
		return name, nil
	}
}

// Engine reconciles one repository against the profile store.
type Engine struct {
	store      *profile.Store
	repo       gitrepo.Accessor
	remoteName string
	logger     *logging.AppLogger
}

// NewEngine builds an engine operating on the repository's origin remote.
func NewEngine(store *profile.Store, repo gitrepo.Accessor, logger *logging.AppLogger) *Engine {
	return &Engine{
		store:      store,
		repo:       repo,
		remoteName: gitrepo.DefaultRemote,
		logger:     logger,
	}
}

// Reconcile reads the current remote URL and drives ReconcileURL.
func (e *Engine) Reconcile(choose ChooseProfile) (Result, error) {
	url, err := e.repo.RemoteURL(e.remoteName)
	if err != nil {
		return Result{}, err
	}
	return e.ReconcileURL(url, choose)
}

// ReconcileURL runs the state machine for the given URL. The URL must
// already be scheme-normalized (see remote.NormalizeScheme); the engine
// classifies what it is handed.
//
// On a change it writes the remote URL and the three identity settings as
// one logical unit. There is no rollback on partial failure: each write is
// independently idempotent and re-running reconciliation is the recovery
// path.
func (e *Engine) ReconcileURL(url string, choose ChooseProfile) (Result, error) {
	cls := remote.Classify(url, e.store)

	if cls.Binding == remote.Unrecognized {
		// Non-upstream and alt-provider URLs are never touched.
		if e.logger != nil {
			e.logger.Debug("Remote not managed by any profile", "url", url)
		}
		return Result{OldURL: url, NewURL: url, Outcome: OutcomeLeftAlone}, nil
	}

	target, err := choose(cls)
	if err != nil {
		return Result{}, err
	}
	p, ok := e.store.Get(target)
	if !ok {
		return Result{}, fmt.Errorf("unknown profile %q", target)
	}
	if !p.Configured() {
		return Result{}, fmt.Errorf("profile %q has no git identity configured - run setup first", target)
	}

	if cls.Binding == remote.Bound && cls.Profile == target {
		// Already correct: the stored URL stays byte-identical and no
		// config write happens.
		return Result{OldURL: url, NewURL: url, ProfileApplied: target, Outcome: OutcomeUnchanged}, nil
	}

	newURL, err := remote.Rewrite(url, target, e.store)
	if err != nil {
		return Result{}, err
	}

	if e.logger != nil {
		from := cls.Binding.String()
		if cls.Binding == remote.Bound {
			from = fmt.Sprintf("BoundTo(%s)", cls.Profile)
		}
		e.logger.LogStateTransition("reconcile", from, fmt.Sprintf("BoundTo(%s)", target))
	}

	if err := e.repo.SetRemoteURL(e.remoteName, newURL); err != nil {
		return Result{}, fmt.Errorf("failed to rewrite remote URL: %w", err)
	}
	if err := e.applyIdentity(p); err != nil {
		return Result{}, err
	}

	outcome := OutcomeBound
	if cls.Binding == remote.Bound {
		outcome = OutcomeSwitched
	}

	return Result{
		OldURL:         url,
		NewURL:         newURL,
		ProfileApplied: target,
		Outcome:        outcome,
	}, nil
}

// ApplyIdentity writes the profile's identity into the repository without
// touching the remote. Used by callers that already hold a correct URL.
func (e *Engine) ApplyIdentity(name string) error {
	p, ok := e.store.Get(name)
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	if !p.Configured() {
		return fmt.Errorf("profile %q has no git identity configured - run setup first", name)
	}
	return e.applyIdentity(p)
}

func (e *Engine) applyIdentity(p profile.Profile) error {
	settings := []struct{ key, value string }{
		{"user.name", p.GitUserName},
		{"user.email", p.GitUserEmail},
		{"core.sshCommand", p.SSHCommand()},
	}
	for _, s := range settings {
		if err := e.repo.ConfigSet(s.key, s.value); err != nil {
			return fmt.Errorf("failed to apply %s for profile %q: %w", s.key, p.Name, err)
		}
	}
	if e.logger != nil {
		e.logger.Debug("Identity applied", "profile", p.Name)
	}
	return nil
}

// IsNoRemote reports whether err means the repository has no origin remote.
func IsNoRemote(err error) bool {
	return errors.Is(err, gitrepo.ErrNoRemote)
}
