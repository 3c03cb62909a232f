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
	"fmt"

	"github.com/blinklabs-io/roomledger/ledger"
)

// GroupSizeError indicates an operation group outside the allowed size range
type GroupSizeError struct {
	Size int
}

func (e GroupSizeError) Error() string {
	return fmt.Sprintf(
		"group size %d outside allowed range 1-%d",
		e.Size,
		ledger.MaxGroupSize,
	)
}

// UnknownApplicationError indicates a call against a nonexistent instance
type UnknownApplicationError struct {
	AppID uint64
}

func (e UnknownApplicationError) Error() string {
	return fmt.Sprintf("unknown application %d", e.AppID)
}

// InvalidGenesisError indicates a misplaced genesis call: app ID zero is
// only valid for CreateApplication, and CreateApplication accepts nothing
// else
type InvalidGenesisError struct {
	AppID uint64
}

func (e InvalidGenesisError) Error() string {
	if e.AppID == 0 {
		return "genesis call must be submitted via CreateApplication"
	}
	return fmt.Sprintf(
		"creation call must use app ID zero (got %d)",
		e.AppID,
	)
}

type InsufficientBalanceError struct {
	Address ledger.Address
	Balance uint64
	Amount  uint64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance for %s: have %d, need %d",
		e.Address,
		e.Balance,
		e.Amount,
	)
}

// InsufficientFeeError indicates the pooled fee credit does not cover the
// group's operations plus its issued inner payments
type InsufficientFeeError struct {
	Credit   uint64
	Required uint64
}

func (e InsufficientFeeError) Error() string {
	return fmt.Sprintf(
		"insufficient pooled fee: credited %d, required %d",
		e.Credit,
		e.Required,
	)
}

type UnsupportedOperationError struct {
	OpType ledger.OperationType
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation type %s", e.OpType)
}
