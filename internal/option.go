package internal

import (
	"io"

	"github.com/starford/bptracker/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	publisher notify.Publisher
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPublisher replaces the MQTT publisher built from the configuration.
func WithPublisher(p notify.Publisher) Option {
	return func(a *application) {
		a.publisher = p
	}
}

// WithLogOutput sets where the JSON logger writes.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
