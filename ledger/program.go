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

package ledger

// Related files:
//   - operation.go: operation group entries that programs are evaluated against
//   - contract/: the room reservation program built on these interfaces
//   - internal/test/ledger/ledger.go: MockEvalContext for testing

// StateStore provides read access to an instance's durable key/value state
// during evaluation. Writes are never applied mid-evaluation; the runtime
// commits them from the evaluation Result after the program accepts.
type StateStore interface {
	Get(key string) ([]byte, bool)
}

// EvalContext is the read-only global context supplied to a program for a
// single evaluation
type EvalContext interface {
	// Timestamp returns the current ledger time in unix seconds
	Timestamp() uint64
	// MinFee returns the minimum required per-operation fee
	MinFee() uint64
	// ApplicationAddress returns the invoked instance's holding account
	ApplicationAddress() Address
	// CreatorAddress returns the account that created the instance
	CreatorAddress() Address
	// State returns the instance's durable state
	State() StateStore
}

// PendingPayment is an inner transaction: a payment the program constructs
// during evaluation and the runtime executes atomically within the same
// group. It is issued from the instance's holding account and is fee-exempt,
// consuming pooled fee budget from the invoking group instead.
type PendingPayment struct {
	To     Address
	Amount uint64
}

// Result carries the effects of an accepted evaluation. Nothing in a Result
// is applied by the program itself; the runtime commits all of it, or none
// of it, together with the rest of the operation group.
type Result struct {
	// StateWrites are durable state updates to apply on commit
	StateWrites map[string][]byte
	// Disbursement is an inner payment to issue on commit, if any
	Disbursement *PendingPayment
	// DeleteInstance destroys the instance and its state on commit
	DeleteInstance bool
}

// Program is a deterministic state machine evaluated once per invoking
// operation. A non-nil error rejects the entire operation group with no
// partial effects.
type Program interface {
	Evaluate(ctx EvalContext, group []Operation, index int) (Result, error)
	// ClearState handles forced instance removal. It performs no validation
	// and always accepts.
	ClearState(ctx EvalContext) Result
}
