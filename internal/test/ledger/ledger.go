// Copyright 2025 Blink Labs Software
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

package test_ledger

import (
	"github.com/blinklabs-io/roomledger/ledger"
)

// Compile-time checks that the mocks implement the ledger interfaces
var (
	_ ledger.EvalContext = (*MockEvalContext)(nil)
	_ ledger.StateStore  = (MemStore)(nil)
)

// MemStore is a map-backed StateStore for tests. Tests may populate it
// directly or via Set.
type MemStore map[string][]byte

func (m MemStore) Get(key string) ([]byte, bool) {
	value, ok := m[key]
	return value, ok
}

func (m MemStore) Set(key string, value []byte) {
	m[key] = value
}

// Apply merges an evaluation result's state writes, as the runtime would on
// commit
func (m MemStore) Apply(writes map[string][]byte) {
	for key, value := range writes {
		m[key] = value
	}
}

// MockEvalContext is the canonical internal mock used by contract tests.
// Tests construct &test_ledger.MockEvalContext{} and configure fields to
// control behavior. Keeping this in an internal package prevents external
// consumers from depending on test-only APIs while allowing in-repo tests to
// reuse the same mock.
type MockEvalContext struct {
	TimestampVal  uint64
	MinFeeVal     uint64
	AppAddressVal ledger.Address
	CreatorVal    ledger.Address
	Store         MemStore
}

func (m *MockEvalContext) Timestamp() uint64 {
	return m.TimestampVal
}

func (m *MockEvalContext) MinFee() uint64 {
	return m.MinFeeVal
}

func (m *MockEvalContext) ApplicationAddress() ledger.Address {
	return m.AppAddressVal
}

func (m *MockEvalContext) CreatorAddress() ledger.Address {
	return m.CreatorVal
}

func (m *MockEvalContext) State() ledger.StateStore {
	if m.Store == nil {
		m.Store = MemStore{}
	}
	return m.Store
}
