// Copyright 2026 The go4mysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import "sync"

// AuthPlugin implements one MySQL/MariaDB authentication method. The
// two spec-mandated methods (old pre-4.1 scrambling and the 4.1+
// SECURE_CONNECTION scramble) are selected directly from the
// handshake's capability flags (§4.3); any other registered plugin is
// reached only via a server-initiated auth-switch mid-handshake.
type AuthPlugin interface {
	// Name returns the plugin's wire name, e.g. "mysql_native_password".
	Name() string

	// Respond computes the client's response bytes given the server's
	// challenge (salt/seed) and the configured password.
	Respond(seed []byte, password string) ([]byte, error)
}

type pluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]AuthPlugin
}

var globalPlugins = &pluginRegistry{plugins: make(map[string]AuthPlugin)}

// RegisterAuthPlugin adds plugin to the global registry, keyed by its
// wire name. Later registrations with the same name replace earlier
// ones.
func RegisterAuthPlugin(plugin AuthPlugin) {
	globalPlugins.mu.Lock()
	defer globalPlugins.mu.Unlock()
	globalPlugins.plugins[plugin.Name()] = plugin
}

func lookupAuthPlugin(name string) (AuthPlugin, bool) {
	globalPlugins.mu.RLock()
	defer globalPlugins.mu.RUnlock()
	p, ok := globalPlugins.plugins[name]
	return p, ok
}

func init() {
	RegisterAuthPlugin(oldPasswordPlugin{})
	RegisterAuthPlugin(nativePasswordPlugin{})
	RegisterAuthPlugin(sha256PasswordPlugin{})
	RegisterAuthPlugin(ed25519Plugin{})
}
