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
	"errors"
	"fmt"

	"github.com/blinklabs-io/roomledger/ledger"
)

// Every error in this package is a rejection: the runtime discards the whole
// operation group with no partial effects. Distinct types exist per failed
// predicate for diagnosability only.

// InvalidInvocationError indicates an unrecognized method selector or a
// malformed invocation shape
type InvalidInvocationError struct {
	Selector []byte
}

func (e InvalidInvocationError) Error() string {
	if len(e.Selector) == 0 {
		return "invalid invocation"
	}
	return fmt.Sprintf("invalid invocation: unknown selector %q", e.Selector)
}

// Sentinel error for invalid invocations so callers can use errors.Is
var ErrInvalidInvocation = errors.New("invalid invocation")

func (InvalidInvocationError) Is(target error) bool {
	return target == ErrInvalidInvocation
}

type WrongArgumentCountError struct {
	Expected int
	Actual   int
}

func (e WrongArgumentCountError) Error() string {
	return fmt.Sprintf(
		"wrong argument count: expected %d, got %d",
		e.Expected,
		e.Actual,
	)
}

func (WrongArgumentCountError) Is(target error) bool {
	return target == ErrInvalidInvocation
}

// MissingCreationNoteError indicates a creation call without the required
// tagging marker in its note field
type MissingCreationNoteError struct{}

func (MissingCreationNoteError) Error() string {
	return fmt.Sprintf("creation note missing required marker %q", CreationNote)
}

type InvalidPriceError struct {
	Price uint64
}

func (e InvalidPriceError) Error() string {
	return fmt.Sprintf("price per night must be positive (got %d)", e.Price)
}

type InvalidNightsError struct {
	Nights uint64
}

func (e InvalidNightsError) Error() string {
	return fmt.Sprintf("number of nights must be positive (got %d)", e.Nights)
}

type WrongGroupSizeError struct {
	Expected int
	Actual   int
}

func (e WrongGroupSizeError) Error() string {
	return fmt.Sprintf(
		"wrong group size: expected %d operations, got %d",
		e.Expected,
		e.Actual,
	)
}

type RoomAlreadyReservedError struct {
	ReservedTo ledger.Address
}

func (e RoomAlreadyReservedError) Error() string {
	return fmt.Sprintf("room is already reserved to %s", e.ReservedTo)
}

type RoomNotReservedError struct{}

func (RoomNotReservedError) Error() string {
	return "room is not reserved"
}

type WrongPaymentTypeError struct {
	Actual ledger.OperationType
}

func (e WrongPaymentTypeError) Error() string {
	return fmt.Sprintf(
		"companion operation must be a payment (got %s)",
		e.Actual,
	)
}

type WrongPaymentReceiverError struct {
	Receiver ledger.Address
}

func (e WrongPaymentReceiverError) Error() string {
	return fmt.Sprintf(
		"payment receiver %s is not the application account",
		e.Receiver,
	)
}

type WrongPaymentSenderError struct {
	Sender ledger.Address
}

func (e WrongPaymentSenderError) Error() string {
	return fmt.Sprintf(
		"payment sender %s does not match the invoking account",
		e.Sender,
	)
}

type WrongPaymentAmountError struct {
	Expected uint64
	Actual   uint64
}

func (e WrongPaymentAmountError) Error() string {
	return fmt.Sprintf(
		"wrong payment amount: expected %d, got %d",
		e.Expected,
		e.Actual,
	)
}

type AmountOverflowError struct {
	Price  uint64
	Nights uint64
}

func (e AmountOverflowError) Error() string {
	return fmt.Sprintf(
		"total amount overflows for price %d and %d nights",
		e.Price,
		e.Nights,
	)
}

type ReservationNotExpiredError struct {
	Now  uint64
	Ends uint64
}

func (e ReservationNotExpiredError) Error() string {
	return fmt.Sprintf(
		"reservation has not expired: now %d, ends %d",
		e.Now,
		e.Ends,
	)
}

type NotReserveeError struct {
	Account ledger.Address
}

func (e NotReserveeError) Error() string {
	return fmt.Sprintf(
		"account %s does not hold the active reservation",
		e.Account,
	)
}

type FeeNotPooledError struct {
	Fee      uint64
	Required uint64
}

func (e FeeNotPooledError) Error() string {
	return fmt.Sprintf(
		"insufficient pooled fee: got %d, need %d",
		e.Fee,
		e.Required,
	)
}

type NotCreatorError struct {
	Sender ledger.Address
}

func (e NotCreatorError) Error() string {
	return fmt.Sprintf("account %s is not the instance creator", e.Sender)
}

// Sentinel error for a missing durable state entry
var ErrStateNotFound = errors.New("room state not found")

// StateDecodeError indicates that the instance's durable state could not be
// loaded or decoded
type StateDecodeError struct {
	Err error
}

func (e StateDecodeError) Error() string {
	return fmt.Sprintf("failed to decode room state: %v", e.Err)
}

func (e StateDecodeError) Unwrap() error {
	return e.Err
}
