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

// MaxGroupSize is the maximum number of operations in one atomic group
const MaxGroupSize = 16

type OperationType uint8

const (
	OperationTypeAppCall OperationType = 1
	OperationTypePayment OperationType = 2
)

func (o OperationType) String() string {
	switch o {
	case OperationTypeAppCall:
		return "appcall"
	case OperationTypePayment:
		return "payment"
	}
	return "unknown"
}

// OnCompletion is the declared intent of an application call, supplied by the
// caller and enforced by the runtime
type OnCompletion uint8

const (
	// OnCompletionNoOp is an ordinary application call
	OnCompletionNoOp OnCompletion = 0
	// OnCompletionDelete destroys the application instance and its state
	OnCompletionDelete OnCompletion = 1
	// OnCompletionClearState forcibly removes the instance from an
	// account's association list without consulting the program
	OnCompletionClearState OnCompletion = 2
)

func (o OnCompletion) String() string {
	switch o {
	case OnCompletionNoOp:
		return "noop"
	case OnCompletionDelete:
		return "delete"
	case OnCompletionClearState:
		return "clearstate"
	}
	return "unknown"
}

// Operation is a single entry in an atomically-evaluated operation group
type Operation interface {
	Type() OperationType
	Sender() Address
	Fee() uint64
}

// AppCall invokes an application program. AppID zero designates instance
// genesis (the creation handler runs and a fresh ID is allocated).
type AppCall struct {
	From       Address
	AppID      uint64
	OnComplete OnCompletion
	Args       [][]byte
	Accounts   []Address
	Note       []byte
	TxFee      uint64
}

func (a *AppCall) Type() OperationType {
	return OperationTypeAppCall
}

func (a *AppCall) Sender() Address {
	return a.From
}

func (a *AppCall) Fee() uint64 {
	return a.TxFee
}

// Beneficiary returns the designated account for the call: the first entry
// of the foreign account list, falling back to the sender
func (a *AppCall) Beneficiary() Address {
	if len(a.Accounts) > 0 {
		return a.Accounts[0]
	}
	return a.From
}

// Payment moves funds between two accounts
type Payment struct {
	From   Address
	To     Address
	Amount uint64
	TxFee  uint64
}

func (p *Payment) Type() OperationType {
	return OperationTypePayment
}

func (p *Payment) Sender() Address {
	return p.From
}

func (p *Payment) Fee() uint64 {
	return p.TxFee
}
