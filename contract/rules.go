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
	"encoding/binary"

	"github.com/blinklabs-io/roomledger/ledger"
)

// CreationRuleFunc represents a function that validates an instance creation
// call against a specific admission rule
type CreationRuleFunc func(
	call *ledger.AppCall,
	ctx ledger.EvalContext,
) error

// ReservationRuleFunc represents a function that validates an ordinary
// application call against a specific reservation rule
type ReservationRuleFunc func(
	call *ledger.AppCall,
	group []ledger.Operation,
	st *RoomState,
	ctx ledger.EvalContext,
) error

var CreationRules = []CreationRuleFunc{
	CreationValidateArgCount,
	CreationValidateNote,
	CreationValidatePrice,
}

var MakeReservationRules = []ReservationRuleFunc{
	ReservationValidateGroupSize,
	ReservationValidateNotReserved,
	ReservationValidateNights,
	ReservationValidatePayment,
}

var EndReservationRules = []ReservationRuleFunc{
	EndValidateReserved,
	EndValidateExpired,
	EndValidateReservee,
	EndValidateFeePooled,
}

// runCreationRules runs the provided rules in order and returns the first
// error encountered; validation is first-failure-aborts-all
func runCreationRules(
	rules []CreationRuleFunc,
	call *ledger.AppCall,
	ctx ledger.EvalContext,
) error {
	for _, rule := range rules {
		if err := rule(call, ctx); err != nil {
			return err
		}
	}
	return nil
}

func runReservationRules(
	rules []ReservationRuleFunc,
	call *ledger.AppCall,
	group []ledger.Operation,
	st *RoomState,
	ctx ledger.EvalContext,
) error {
	for _, rule := range rules {
		if err := rule(call, group, st, ctx); err != nil {
			return err
		}
	}
	return nil
}

// decodeUint64 decodes an 8-byte big-endian unsigned integer argument
func decodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, InvalidInvocationError{}
	}
	return binary.BigEndian.Uint64(data), nil
}

// CreationValidateArgCount ensures the creation call carries exactly the four
// positional arguments: name, image, description, price per night
func CreationValidateArgCount(
	call *ledger.AppCall,
	_ ledger.EvalContext,
) error {
	if len(call.Args) != createArgCount {
		return WrongArgumentCountError{
			Expected: createArgCount,
			Actual:   len(call.Args),
		}
	}
	return nil
}

// CreationValidateNote ensures the creation operation is tagged with the
// required version marker in its note field
func CreationValidateNote(
	call *ledger.AppCall,
	_ ledger.EvalContext,
) error {
	if string(call.Note) != CreationNote {
		return MissingCreationNoteError{}
	}
	return nil
}

// CreationValidatePrice ensures the price per night is a positive integer
func CreationValidatePrice(
	call *ledger.AppCall,
	_ ledger.EvalContext,
) error {
	price, err := decodeUint64(call.Args[3])
	if err != nil {
		return err
	}
	if price == 0 {
		return InvalidPriceError{Price: price}
	}
	return nil
}

// ReservationValidateGroupSize ensures the booking call is part of a group of
// exactly two operations (the call plus the companion payment)
func ReservationValidateGroupSize(
	_ *ledger.AppCall,
	group []ledger.Operation,
	_ *RoomState,
	_ ledger.EvalContext,
) error {
	if len(group) != makeGroupSize {
		return WrongGroupSizeError{
			Expected: makeGroupSize,
			Actual:   len(group),
		}
	}
	return nil
}

// ReservationValidateNotReserved ensures the room has no active reservation
func ReservationValidateNotReserved(
	_ *ledger.AppCall,
	_ []ledger.Operation,
	st *RoomState,
	_ ledger.EvalContext,
) error {
	if st.Reserved {
		return RoomAlreadyReservedError{ReservedTo: st.ReservedTo}
	}
	return nil
}

// ReservationValidateNights ensures the number-of-nights argument is present
// and a positive integer. Zero-night bookings are rejected outright rather
// than accepted as a degenerate deposit-only reservation.
func ReservationValidateNights(
	call *ledger.AppCall,
	_ []ledger.Operation,
	_ *RoomState,
	_ ledger.EvalContext,
) error {
	if len(call.Args) != makeArgCount {
		return WrongArgumentCountError{
			Expected: makeArgCount,
			Actual:   len(call.Args),
		}
	}
	nights, err := decodeUint64(call.Args[1])
	if err != nil {
		return err
	}
	if nights == 0 {
		return InvalidNightsError{Nights: nights}
	}
	// The reservation expiry must be representable
	if nights > maxNights {
		return InvalidNightsError{Nights: nights}
	}
	return nil
}

// ReservationValidatePayment ensures the second group operation is a payment
// to the application account, from the invoking account, for exactly
// price x nights plus the reservation deposit. Equality is deliberate: any
// overpayment or underpayment rejects, with no change-giving.
func ReservationValidatePayment(
	call *ledger.AppCall,
	group []ledger.Operation,
	st *RoomState,
	ctx ledger.EvalContext,
) error {
	payment, ok := group[1].(*ledger.Payment)
	if !ok {
		return WrongPaymentTypeError{Actual: group[1].Type()}
	}
	if payment.To != ctx.ApplicationAddress() {
		return WrongPaymentReceiverError{Receiver: payment.To}
	}
	if payment.From != call.Sender() {
		return WrongPaymentSenderError{Sender: payment.From}
	}
	nights, err := decodeUint64(call.Args[1])
	if err != nil {
		return err
	}
	expected, err := TotalAmount(st.PricePerNight, nights)
	if err != nil {
		return err
	}
	if payment.Amount != expected {
		return WrongPaymentAmountError{
			Expected: expected,
			Actual:   payment.Amount,
		}
	}
	return nil
}

// EndValidateReserved ensures there is an active reservation to release
func EndValidateReserved(
	_ *ledger.AppCall,
	_ []ledger.Operation,
	st *RoomState,
	_ ledger.EvalContext,
) error {
	if !st.Reserved {
		return RoomNotReservedError{}
	}
	return nil
}

// EndValidateExpired ensures the reservation period has elapsed
func EndValidateExpired(
	_ *ledger.AppCall,
	_ []ledger.Operation,
	st *RoomState,
	ctx ledger.EvalContext,
) error {
	if ctx.Timestamp() < st.ReservationEnds {
		return ReservationNotExpiredError{
			Now:  ctx.Timestamp(),
			Ends: st.ReservationEnds,
		}
	}
	return nil
}

// EndValidateReservee ensures only the holder of the active reservation can
// trigger release. This is an access-control check: not even the creator may
// release on the reservee's behalf.
func EndValidateReservee(
	call *ledger.AppCall,
	_ []ledger.Operation,
	st *RoomState,
	_ ledger.EvalContext,
) error {
	if call.Beneficiary() != st.ReservedTo {
		return NotReserveeError{Account: call.Beneficiary()}
	}
	return nil
}

// EndValidateFeePooled ensures the caller has pooled enough fee budget to
// cover both the call itself and the fee-exempt refund payment it triggers
func EndValidateFeePooled(
	call *ledger.AppCall,
	_ []ledger.Operation,
	_ *RoomState,
	ctx ledger.EvalContext,
) error {
	required := ctx.MinFee() * endFeeMultiplier
	if call.Fee() < required {
		return FeeNotPooledError{Fee: call.Fee(), Required: required}
	}
	return nil
}
