/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/logging"
	"github.com/neilalexander/mailmesh/internal/utils"
)

const EnvPrefix = "MAILMESH"

type Config struct {
	Network NetworkConfig  `mapstructure:"network" yaml:"network"`
	Filters []FilterConfig `mapstructure:"filters" yaml:"filters"`
	SMTP    SMTPConfig     `mapstructure:"smtp" yaml:"smtp"`
	IMAP    IMAPConfig     `mapstructure:"imap" yaml:"imap"`
	Journal JournalConfig  `mapstructure:"journal" yaml:"journal"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

type NetworkConfig struct {
	Servers []ServerConfig `mapstructure:"servers" yaml:"servers"`
}

// ServerConfig describes one mail server, its users and the servers it
// links to. Links are undirected, so naming a peer on either side is enough.
type ServerConfig struct {
	Name  string   `mapstructure:"name" yaml:"name"`
	Users []string `mapstructure:"users" yaml:"users,omitempty"`
	Peers []string `mapstructure:"peers" yaml:"peers,omitempty"`
}

type FilterConfig struct {
	Category string   `mapstructure:"category" yaml:"category"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

type SMTPConfig struct {
	Listen          string `mapstructure:"listen" yaml:"listen"`
	Domain          string `mapstructure:"domain" yaml:"domain"`
	MaxMessageBytes int    `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MaxRecipients   int    `mapstructure:"max_recipients" yaml:"max_recipients"`
}

type IMAPConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// JournalConfig selects where deliveries are recorded. Driver "none"
// disables the journal.
type JournalConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

var JournalDrivers = []string{"sqlite3", "postgres", "none"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("smtp.listen", "localhost:1025")
	v.SetDefault("smtp.domain", utils.Domain)
	v.SetDefault("smtp.max_message_bytes", 1024*1024)
	v.SetDefault("smtp.max_recipients", 50)
	v.SetDefault("imap.listen", "localhost:1143")
	v.SetDefault("journal.driver", "sqlite3")
	v.SetDefault("journal.dsn", ":memory:")
	v.SetDefault("log.level", "info")
}

// DefaultServers is the two-server network used when no topology is
// configured.
func DefaultServers() []ServerConfig {
	return []ServerConfig{
		{Name: "gmail", Peers: []string{"outlook"}},
		{Name: "outlook"},
	}
}

func DefaultFilters() []FilterConfig {
	var filters []FilterConfig
	for _, r := range filter.DefaultRules() {
		filters = append(filters, FilterConfig{
			Category: r.Category,
			Keywords: append([]string(nil), r.Keywords...),
		})
	}
	return filters
}

// Load reads the YAML file at path, if path is not empty, on top of the
// defaults. MAILMESH_* environment variables override both, for example
// MAILMESH_SMTP_LISTEN or MAILMESH_JOURNAL_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	if len(cfg.Network.Servers) == 0 {
		cfg.Network.Servers = DefaultServers()
	}
	if len(cfg.Filters) == 0 {
		cfg.Filters = DefaultFilters()
	}
	cfg.Journal.Driver = strings.ToLower(cfg.Journal.Driver)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	return cfg, nil
}

// Rules converts the configured filters to filter rules.
func (c *Config) Rules() []filter.Rule {
	rules := make([]filter.Rule, 0, len(c.Filters))
	for _, f := range c.Filters {
		rules = append(rules, filter.Rule{
			Category: f.Category,
			Keywords: append([]string(nil), f.Keywords...),
		})
	}
	return rules
}

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Network.Servers))
	for _, s := range c.Network.Servers {
		if s.Name == "" {
			return fmt.Errorf("network: server with empty name")
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("network: server %q listed twice", s.Name)
		}
		seen[s.Name] = struct{}{}

		users := make(map[string]struct{}, len(s.Users))
		for _, u := range s.Users {
			if u == "" {
				return fmt.Errorf("network: server %q has an empty user name", s.Name)
			}
			if _, ok := users[u]; ok {
				return fmt.Errorf("network: user %q listed twice on %q", u, s.Name)
			}
			users[u] = struct{}{}
		}
	}
	for _, s := range c.Network.Servers {
		for _, p := range s.Peers {
			if p == s.Name {
				return fmt.Errorf("network: server %q lists itself as a peer", s.Name)
			}
			if _, ok := seen[p]; !ok {
				return fmt.Errorf("network: server %q lists unknown peer %q", s.Name, p)
			}
		}
	}

	if _, err := filter.New(c.Rules()); err != nil {
		return fmt.Errorf("filters: %w", err)
	}

	if !contains(JournalDrivers, c.Journal.Driver) {
		return fmt.Errorf("journal: unknown driver %q (want one of %s)", c.Journal.Driver, strings.Join(JournalDrivers, ", "))
	}
	if c.Journal.Driver != "none" && c.Journal.DSN == "" {
		return fmt.Errorf("journal: dsn is required for driver %q", c.Journal.Driver)
	}

	if c.SMTP.MaxMessageBytes <= 0 {
		return fmt.Errorf("smtp: max_message_bytes must be positive")
	}
	if c.SMTP.MaxRecipients <= 0 {
		return fmt.Errorf("smtp: max_recipients must be positive")
	}
	if !logging.Valid(c.Log.Level) {
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
