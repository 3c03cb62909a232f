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

package roomledger

import (
	"log/slog"
	"time"

	"github.com/blinklabs-io/roomledger/ledger"
)

type LedgerOptionFunc func(*Ledger)

// WithLogger specifies the logger used by the runtime. Defaults to
// slog.Default() when not provided.
func WithLogger(logger *slog.Logger) LedgerOptionFunc {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithMinFee specifies the minimum required per-operation fee
func WithMinFee(minFee uint64) LedgerOptionFunc {
	return func(l *Ledger) {
		l.minFee = minFee
	}
}

// WithTimeSource specifies the clock used for ledger timestamps. Defaults to
// time.Now.
func WithTimeSource(timeSource func() time.Time) LedgerOptionFunc {
	return func(l *Ledger) {
		l.timeSource = timeSource
	}
}

// WithInitialBalance credits an account at construction time
func WithInitialBalance(addr ledger.Address, amount uint64) LedgerOptionFunc {
	return func(l *Ledger) {
		l.state.Balances[addr] += amount
	}
}
