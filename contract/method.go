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

package contract

import (
	"github.com/blinklabs-io/roomledger/ledger"
)

// Method is the closed set of operations the room program dispatches to.
// It is decoded once at the boundary; anything unrecognized maps to
// MethodInvalid and rejects the group.
type Method uint8

const (
	MethodInvalid Method = iota
	MethodCreate
	MethodDelete
	MethodMakeReservation
	MethodEndReservation
)

// Method selectors carried as the first application argument of ordinary
// calls
const (
	selectorMakeReservation = "make"
	selectorEndReservation  = "end"
)

func (m Method) String() string {
	switch m {
	case MethodCreate:
		return "create"
	case MethodDelete:
		return "delete"
	case MethodMakeReservation:
		return "make"
	case MethodEndReservation:
		return "end"
	}
	return "invalid"
}

// MethodFromCall decodes the invoked method from an application call.
// Creation is designated by app ID zero (instance genesis) and is therefore
// unreachable once an instance exists; deletion by the call's completion
// type; everything else by the leading method-selector argument.
func MethodFromCall(call *ledger.AppCall) Method {
	if call.AppID == 0 {
		return MethodCreate
	}
	if call.OnComplete == ledger.OnCompletionDelete {
		return MethodDelete
	}
	if call.OnComplete != ledger.OnCompletionNoOp {
		return MethodInvalid
	}
	if len(call.Args) == 0 {
		return MethodInvalid
	}
	switch string(call.Args[0]) {
	case selectorMakeReservation:
		return MethodMakeReservation
	case selectorEndReservation:
		return MethodEndReservation
	}
	return MethodInvalid
}
