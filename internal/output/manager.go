package output

import (
	"errors"
	"fmt"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
)

// Reporter renders the results of a run.
type Reporter interface {
	Report(results *checkapi.RunResults, cfg *config.Config, reg *checkapi.Registry) error
	Close() error
}

// Manager fans a run out to several reporters.
type Manager struct {
	reporters []Reporter
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddReporter(r Reporter) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if r == nil {
		return fmt.Errorf("reporter must not be nil")
	}
	m.reporters = append(m.reporters, r)
	return nil
}

func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.reporters)
}

func (m *Manager) Report(results *checkapi.RunResults, cfg *config.Config, reg *checkapi.Registry) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, r := range m.reporters {
		if err := r.Report(results, cfg, reg); err != nil {
			errs = append(errs, fmt.Errorf("report %T: %w", r, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing reports: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, r := range m.reporters {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", r, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing reporters: %w", errors.Join(errs...))
	}
	return nil
}
