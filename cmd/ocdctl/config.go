package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-openocd/ocd"
)

// daemonSpec is the resolved connection target of one OpenOCD daemon.
type daemonSpec struct {
	Host    string
	Port    int
	Timeout time.Duration
}

type fileDaemon struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Timeout string `toml:"timeout"`
}

type fileConfig struct {
	Daemons map[string]fileDaemon `toml:"daemons"`
}

// loadConfig reads the named daemons from a TOML config file. Absent
// fields fall back to the library defaults.
func loadConfig(path string) (map[string]daemonSpec, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(raw.Daemons) == 0 {
		return nil, fmt.Errorf("config %s declares no daemons", path)
	}

	daemons := make(map[string]daemonSpec, len(raw.Daemons))
	for name, d := range raw.Daemons {
		spec := daemonSpec{
			Host:    ocd.DefaultHost,
			Port:    ocd.DefaultPort,
			Timeout: ocd.DefaultRecvTimeout,
		}

		if d.Host != "" {
			spec.Host = d.Host
		}
		if meta.IsDefined("daemons", name, "port") {
			spec.Port = d.Port
		}
		if d.Timeout != "" {
			timeout, err := time.ParseDuration(d.Timeout)
			if err != nil {
				return nil, fmt.Errorf("daemon %q: parse timeout: %w", name, err)
			}
			spec.Timeout = timeout
		}

		daemons[name] = spec
	}

	return daemons, nil
}

// buildRegistry creates a disconnected client per declared daemon.
func buildRegistry(daemons map[string]daemonSpec) (*ocd.Registry, error) {
	registry := ocd.NewRegistry()

	for name, spec := range daemons {
		cfg, err := ocd.NewConnectionConfig(spec.Host, spec.Port, ocd.WithDefaultTimeout(spec.Timeout))
		if err != nil {
			return nil, fmt.Errorf("daemon %q: %w", name, err)
		}

		client, err := ocd.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("daemon %q: %w", name, err)
		}

		if err := registry.Register(name, client); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// selectDaemon picks the client to talk to. With a single declared daemon
// the name may be omitted.
func selectDaemon(registry *ocd.Registry, daemons map[string]daemonSpec, name string) (*ocd.Client, error) {
	if name == "" {
		if registry.Len() == 1 {
			names := registry.Names()
			client, _ := registry.Get(names[0])
			return client, nil
		}

		names := registry.Names()
		sort.Strings(names)

		return nil, fmt.Errorf("config declares %d daemons, select one with --daemon (%v)", len(daemons), names)
	}

	client, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("daemon %q is not declared in the config", name)
	}

	return client, nil
}
