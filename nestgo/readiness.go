// Copyright 2025 The Nestgo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nestgo

import "sync"

// Gate represents a component that reports its own readiness status.
// Kept intentionally small: full health/debug endpoint machinery
// belongs to the embedding application, not the core.
type Gate interface {
	Ready() bool
	Name() string
}

// ReadinessManager tracks runtime readiness gates. It is safe for
// concurrent use.
type ReadinessManager struct {
	mu    sync.RWMutex
	gates map[string]Gate
}

func newReadinessManager() *ReadinessManager {
	return &ReadinessManager{gates: make(map[string]Gate)}
}

// Register adds or replaces a named gate.
func (rm *ReadinessManager) Register(name string, gate Gate) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.gates[name] = gate
}

// Unregister removes a named gate.
func (rm *ReadinessManager) Unregister(name string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.gates, name)
}

// Check reports whether every registered gate is ready, and the
// per-gate status for a caller that wants to report why not.
func (rm *ReadinessManager) Check() (bool, map[string]bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if len(rm.gates) == 0 {
		return true, nil
	}

	status := make(map[string]bool, len(rm.gates))
	allReady := true
	for name, gate := range rm.gates {
		ready := gate.Ready()
		status[name] = ready
		if !ready {
			allReady = false
		}
	}
	return allReady, status
}
