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

// Package contract implements the on-ledger program for a single-room rental
// agreement: one room, one price, one active reservation at a time. The
// program is a pure function of (durable state, operation group, ledger
// time); all effects are carried in the returned Result and committed
// atomically by the host runtime.
package contract

import (
	"time"

	"github.com/blinklabs-io/roomledger/ledger"
)

const (
	// createArgCount is the positional argument count of the creation call:
	// name, image, description, price per night
	createArgCount = 4
	// makeArgCount is the argument count of a booking call: selector, nights
	makeArgCount = 2
	// makeGroupSize is the required group size for a booking: the call plus
	// its companion payment
	makeGroupSize = 2
	// endFeeMultiplier is the pooled fee budget required to release a
	// reservation: the call fee plus the fee-exempt refund it triggers
	endFeeMultiplier = 2
	// maxNights bounds bookings so the expiry timestamp stays representable
	maxNights = 1 << 32
)

// Room implements the reservation program for a single room instance
type Room struct{}

var _ ledger.Program = Room{}

// Evaluate routes the invoking operation to the matching handler and returns
// the effects to commit. A non-nil error rejects the entire group.
func (Room) Evaluate(
	ctx ledger.EvalContext,
	group []ledger.Operation,
	index int,
) (ledger.Result, error) {
	if index < 0 || index >= len(group) {
		return ledger.Result{}, InvalidInvocationError{}
	}
	call, ok := group[index].(*ledger.AppCall)
	if !ok {
		return ledger.Result{}, InvalidInvocationError{}
	}
	switch MethodFromCall(call) {
	case MethodCreate:
		return evalCreate(ctx, call)
	case MethodDelete:
		return evalDelete(ctx, call)
	case MethodMakeReservation:
		return evalMakeReservation(ctx, call, group)
	case MethodEndReservation:
		return evalEndReservation(ctx, call, group)
	}
	var selector []byte
	if len(call.Args) > 0 {
		selector = call.Args[0]
	}
	return ledger.Result{}, InvalidInvocationError{Selector: selector}
}

// ClearState handles forced instance removal from an account's association
// list. It performs no validation and touches no state.
func (Room) ClearState(_ ledger.EvalContext) ledger.Result {
	return ledger.Result{}
}

// evalCreate admits the instance at genesis and writes the immutable fields.
// This is the only path that may set them and it runs exactly once.
func evalCreate(
	ctx ledger.EvalContext,
	call *ledger.AppCall,
) (ledger.Result, error) {
	if err := runCreationRules(CreationRules, call, ctx); err != nil {
		return ledger.Result{}, err
	}
	price, err := decodeUint64(call.Args[3])
	if err != nil {
		return ledger.Result{}, err
	}
	st := &RoomState{
		Name:          call.Args[0],
		Image:         call.Args[1],
		Description:   call.Args[2],
		PricePerNight: price,
		Reserved:      false,
	}
	writes, err := st.stateWrites()
	if err != nil {
		return ledger.Result{}, err
	}
	return ledger.Result{StateWrites: writes}, nil
}

// evalMakeReservation books the room for the invoking account. The call must
// be the first of exactly two operations; the second is the payment covering
// price x nights plus the refundable deposit.
func evalMakeReservation(
	ctx ledger.EvalContext,
	call *ledger.AppCall,
	group []ledger.Operation,
) (ledger.Result, error) {
	st, err := LoadRoomState(ctx.State())
	if err != nil {
		return ledger.Result{}, err
	}
	err = runReservationRules(MakeReservationRules, call, group, st, ctx)
	if err != nil {
		return ledger.Result{}, err
	}
	nights, err := decodeUint64(call.Args[1])
	if err != nil {
		return ledger.Result{}, err
	}
	newState := *st
	newState.Reserved = true
	newState.ReservedTo = call.Beneficiary()
	newState.ReservationEnds = ctx.Timestamp() +
		nights*uint64(NightDuration/time.Second)
	writes, err := newState.stateWrites()
	if err != nil {
		return ledger.Result{}, err
	}
	return ledger.Result{StateWrites: writes}, nil
}

// evalEndReservation releases an expired reservation and refunds the deposit
// to the reservee via an inner payment. Nightly proceeds stay with the
// application account.
func evalEndReservation(
	ctx ledger.EvalContext,
	call *ledger.AppCall,
	group []ledger.Operation,
) (ledger.Result, error) {
	st, err := LoadRoomState(ctx.State())
	if err != nil {
		return ledger.Result{}, err
	}
	err = runReservationRules(EndReservationRules, call, group, st, ctx)
	if err != nil {
		return ledger.Result{}, err
	}
	refund := &ledger.PendingPayment{
		To:     st.ReservedTo,
		Amount: ReservationFee,
	}
	newState := *st
	newState.Reserved = false
	newState.ReservedTo = ledger.Address{}
	newState.ReservationEnds = 0
	writes, err := newState.stateWrites()
	if err != nil {
		return ledger.Result{}, err
	}
	return ledger.Result{
		StateWrites:  writes,
		Disbursement: refund,
	}, nil
}

// evalDelete tears the instance down. This is a capability check only: the
// creator may delete regardless of reservation state, which can strand held
// funds (trusted emergency teardown).
func evalDelete(
	ctx ledger.EvalContext,
	call *ledger.AppCall,
) (ledger.Result, error) {
	if call.Sender() != ctx.CreatorAddress() {
		return ledger.Result{}, NotCreatorError{Sender: call.Sender()}
	}
	return ledger.Result{DeleteInstance: true}, nil
}
