package debug

import "go.uber.org/zap"

// PanelBuilderOption is a functional option for configuring a Panel.
type PanelBuilderOption func(*panel)

// WithLogger sets the logger the panel reports to.
func WithLogger(log *zap.Logger) PanelBuilderOption {
	return func(p *panel) {
		p.log = log
	}
}
