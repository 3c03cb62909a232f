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
	"sync"
	"time"

	"github.com/blinklabs-io/roomledger/ledger"
	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// ReservationFee is the fixed refundable deposit collected at booking
	// time and returned at release time, separate from nightly proceeds
	ReservationFee uint64 = 1_000_000

	// NightDuration is the length of one "night" unit. Kept short so
	// reservations expire on a testable timescale.
	NightDuration = 60 * time.Second

	// CreationNote is the tagging marker required in the note field of the
	// creation operation
	CreationNote = "hotel-reservation:uv1"
)

// StateKey is the durable state store key the room state serializes to
const StateKey = "room"

// RoomState is the durable state of one room instance, serialized to the
// host runtime's key/value store as a deterministic CBOR array
type RoomState struct {
	// Tells the CBOR codec to convert to/from a struct and a CBOR array
	_ struct{} `cbor:",toarray"`

	// Immutable fields, written exactly once at creation
	Name          []byte
	Image         []byte
	Description   []byte
	PricePerNight uint64

	// Reservation fields, mutated by the booking and release handlers
	Reserved        bool
	ReservedTo      ledger.Address
	ReservationEnds uint64
}

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

// getEncMode returns a cached EncMode, initializing it on first use. State
// encoding must be byte-identical across validators, so map keys are sorted
// deterministically.
func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

// LoadRoomState reads and decodes the room state from the provided store
func LoadRoomState(store ledger.StateStore) (*RoomState, error) {
	data, ok := store.Get(StateKey)
	if !ok {
		return nil, StateDecodeError{Err: ErrStateNotFound}
	}
	var st RoomState
	if err := _cbor.Unmarshal(data, &st); err != nil {
		return nil, StateDecodeError{Err: err}
	}
	return &st, nil
}

// Encode serializes the room state as deterministic CBOR
func (s *RoomState) Encode() ([]byte, error) {
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(s)
}

// stateWrites returns the single-entry write set committing this state
func (s *RoomState) stateWrites() (map[string][]byte, error) {
	data, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return map[string][]byte{StateKey: data}, nil
}

// TotalAmount returns the exact payment required to book the given number of
// nights: price x nights plus the refundable deposit
func TotalAmount(pricePerNight, nights uint64) (uint64, error) {
	if nights > 0 && pricePerNight > (^uint64(0)-ReservationFee)/nights {
		return 0, AmountOverflowError{Price: pricePerNight, Nights: nights}
	}
	return pricePerNight*nights + ReservationFee, nil
}
