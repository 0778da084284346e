// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package config parses connection parameters for the Session: a DSN
// string (teacher-style regexp parse) or an optional ini file of
// overrides (SPEC_FULL.md §6 "Configuration").
package config

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Config is the scalar connection configuration named in spec.md §6:
// host, port, user, password, database, and an optional encoding.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Encoding string
}

var dsnPattern = regexp.MustCompile(
	`^(?:(?P<user>[^:@]*)(?::(?P<passwd>[^@]*))?@)?` + // [user[:password]@]
		`(?P<host>[^:/]+)(?::(?P<port>\d+))?` + // host[:port]
		`/(?P<dbname>[^?]*)` + // /dbname
		`(?:\?(?P<params>.*))?$`) // [?encoding=...]

// ParseDSN parses a "user:password@host:port/dbname?encoding=xxx"
// style data source name, in the spirit of the teacher's own DSN
// parser but shaped to this client's scalar fields rather than a
// generic params map.
func ParseDSN(dsn string) (*Config, error) {
	m := dsnPattern.FindStringSubmatch(dsn)
	if m == nil {
		return nil, errors.Errorf("config: malformed DSN %q", dsn)
	}
	names := dsnPattern.SubexpNames()

	cfg := &Config{Port: 3306}
	for i, v := range m {
		switch names[i] {
		case "user":
			cfg.User = v
		case "passwd":
			cfg.Password = v
		case "host":
			cfg.Host = v
		case "port":
			if v != "" {
				p, err := strconv.Atoi(v)
				if err != nil {
					return nil, errors.Wrap(err, "config: invalid port")
				}
				cfg.Port = p
			}
		case "dbname":
			cfg.Database = v
		case "params":
			cfg.Encoding = parseEncodingParam(v)
		}
	}
	return cfg, nil
}

func parseEncodingParam(params string) string {
	re := regexp.MustCompile(`(?:^|&)encoding=([^&]*)`)
	m := re.FindStringSubmatch(params)
	if m == nil {
		return ""
	}
	return m[1]
}

// LoadFile reads connection overrides from an ini file's [connection]
// section. This supplements, and never replaces, the constructor
// arguments a caller passes explicitly (SPEC_FULL.md §6).
func LoadFile(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: loading %s", path)
	}
	sec := f.Section("connection")

	cfg := &Config{Port: 3306}
	cfg.Host = sec.Key("host").String()
	if p := sec.Key("port").String(); p != "" {
		port, err := sec.Key("port").Int()
		if err != nil {
			return nil, errors.Wrap(err, "config: invalid port in file")
		}
		cfg.Port = port
	}
	cfg.User = sec.Key("user").String()
	cfg.Password = sec.Key("password").String()
	cfg.Database = sec.Key("database").String()
	cfg.Encoding = sec.Key("encoding").String()
	return cfg, nil
}

// Merge layers overrides on top of base: any non-zero field in
// overrides wins, everything else falls back to base.
func Merge(base, overrides *Config) *Config {
	merged := *base
	if overrides.Host != "" {
		merged.Host = overrides.Host
	}
	if overrides.Port != 0 {
		merged.Port = overrides.Port
	}
	if overrides.User != "" {
		merged.User = overrides.User
	}
	if overrides.Password != "" {
		merged.Password = overrides.Password
	}
	if overrides.Database != "" {
		merged.Database = overrides.Database
	}
	if overrides.Encoding != "" {
		merged.Encoding = overrides.Encoding
	}
	return &merged
}
