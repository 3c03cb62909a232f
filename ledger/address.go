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

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// AddressSize is the length in bytes of an account identifier
const AddressSize = 28

// AddressHrp is the human-readable prefix used when rendering an account
// identifier as a bech32 string
const AddressHrp = "room"

// Address is an account identifier: the blake2b-224 hash of the account's
// underlying key material (or of the application ID for application holding
// accounts)
type Address [AddressSize]byte

// NewAddress returns an Address decoded from the provided bech32 address string
func NewAddress(addr string) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Address{}, err
	}
	if hrp != AddressHrp {
		return Address{}, fmt.Errorf(
			"unexpected address prefix %q (expected %q)",
			hrp,
			AddressHrp,
		)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error decoding address: %w", err)
	}
	if len(decoded) != AddressSize {
		return Address{}, fmt.Errorf(
			"invalid address payload length: %d",
			len(decoded),
		)
	}
	a := Address{}
	copy(a[:], decoded)
	return a, nil
}

// NewAddressFromBytes returns an Address from the provided raw bytes
func NewAddressFromBytes(data []byte) (Address, error) {
	if len(data) != AddressSize {
		return Address{}, fmt.Errorf(
			"invalid address payload length: %d",
			len(data),
		)
	}
	a := Address{}
	copy(a[:], data)
	return a, nil
}

// HashAddress returns the Address derived by hashing the provided data with
// blake2b-224
func HashAddress(data []byte) Address {
	tmpHash, err := blake2b.New(AddressSize, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	a := Address{}
	copy(a[:], tmpHash.Sum(nil))
	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns whether the address is the empty account identifier
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the bech32-encoded version of the address
func (a Address) String() string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error converting data to base32: %s",
				err,
			),
		)
	}
	encoded, err := bech32.Encode(AddressHrp, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// Hex returns the raw account identifier as a hex string
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}
