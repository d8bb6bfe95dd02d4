package ocd

import (
	"sync"
	"time"

	"github.com/arloliu/go-openocd/logger"
)

const (
	// DefaultHost is the host OpenOCD listens on by default.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the TCP port of OpenOCD's Tcl RPC service.
	DefaultPort = 6666

	// DefaultRecvTimeout bounds one command round trip unless overridden.
	DefaultRecvTimeout = 5 * time.Second

	defaultSendTimeout    = 3 * time.Second
	defaultConnectTimeout = 3 * time.Second

	// defaultMaxResponseSize is a safety limit on the accumulated response.
	defaultMaxResponseSize = 8 * 1024 * 1024
)

// ConnectionConfig holds the configuration of one client connection to
// OpenOCD's Tcl RPC service.
type ConnectionConfig struct {
	mu sync.RWMutex

	// host of the OpenOCD Tcl RPC service. Defaults to DefaultHost.
	host string

	// port of the OpenOCD Tcl RPC service. Defaults to DefaultPort.
	port int

	// defaultRecvTimeout bounds each command round trip unless a per-call
	// override is supplied. Mutable after construction via
	// Client.SetDefaultTimeout. Defaults to DefaultRecvTimeout.
	defaultRecvTimeout time.Duration

	// sendTimeout bounds the transmission of one command.
	// Defaults to 3 seconds.
	sendTimeout time.Duration

	// connectTimeout bounds the TCP connection establishment.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// maxResponseSize is the maximum accepted response size in bytes.
	// Defaults to 8 MiB.
	maxResponseSize int

	// logger receives connection and command events.
	logger logger.Logger
}

// NewConnectionConfig creates a connection configuration for the OpenOCD
// Tcl RPC service at the given host and port, initialized with default
// values and customized by the provided options.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		defaultRecvTimeout: DefaultRecvTimeout,
		sendTimeout:        defaultSendTimeout,
		connectTimeout:     defaultConnectTimeout,
		maxResponseSize:    defaultMaxResponseSize,
		logger:             logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return nil, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Host returns the configured host.
func (cfg *ConnectionConfig) Host() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.host
}

// Port returns the configured TCP port.
func (cfg *ConnectionConfig) Port() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.port
}

// DefaultTimeout returns the current default command timeout.
func (cfg *ConnectionConfig) DefaultTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.defaultRecvTimeout
}

// SendTimeout returns the command transmission timeout.
func (cfg *ConnectionConfig) SendTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.sendTimeout
}

// ConnectTimeout returns the TCP connection establishment timeout.
func (cfg *ConnectionConfig) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

// MaxResponseSize returns the maximum accepted response size in bytes.
func (cfg *ConnectionConfig) MaxResponseSize() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.maxResponseSize
}

// Logger returns the configured logger.
func (cfg *ConnectionConfig) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

func (cfg *ConnectionConfig) setDefaultTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidTimeout
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	cfg.defaultRecvTimeout = timeout

	return nil
}

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{name: name, applyFunc: f}
}

// withHost sets the host of the OpenOCD Tcl RPC service.
// An empty host falls back to DefaultHost.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if host != "" {
			cfg.host = host
		}

		return nil
	})
}

// withPort sets the TCP port of the OpenOCD Tcl RPC service.
// An error is returned if the port is out of the valid range (1-65535).
func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if port < 1 || port > 65535 {
			return ErrInvalidPort
		}
		cfg.port = port

		return nil
	})
}

// WithDefaultTimeout sets the default timeout applied to every command
// round trip that carries no per-call override.
//
// The default value is DefaultRecvTimeout (5 seconds).
func WithDefaultTimeout(timeout time.Duration) ConnOption {
	return newConnOptFunc("WithDefaultTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		return cfg.setDefaultTimeout(timeout)
	})
}

// WithSendTimeout sets the timeout for transmitting one command.
//
// The default value is 3 seconds.
func WithSendTimeout(timeout time.Duration) ConnOption {
	return newConnOptFunc("WithSendTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		cfg.sendTimeout = timeout

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the TCP connection.
//
// The default value is 3 seconds.
func WithConnectTimeout(timeout time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		cfg.connectTimeout = timeout

		return nil
	})
}

// WithMaxResponseSize sets the maximum accepted response size in bytes.
// Responses growing beyond the limit invalidate the connection.
//
// The default value is 8 MiB.
func WithMaxResponseSize(size int) ConnOption {
	return newConnOptFunc("WithMaxResponseSize", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if size < 1 {
			return ErrInvalidResponseSize
		}
		cfg.maxResponseSize = size

		return nil
	})
}

// WithLogger sets the logger that receives connection and command events.
//
// The default is the package-level logger of the logger package.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if l == nil {
			return nil
		}
		cfg.logger = l

		return nil
	})
}
