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

package roomledger_test

import (
	"encoding/binary"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/roomledger"
	"github.com/blinklabs-io/roomledger/contract"
	"github.com/blinklabs-io/roomledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	creator = ledger.HashAddress([]byte("creator"))
	guest   = ledger.HashAddress([]byte("guest"))
)

const (
	price     = uint64(100)
	minFee    = uint64(1000)
	startTime = int64(1_700_000_000)
)

// testClock is a controllable time source
type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(startTime, 0)}
}

func (c *testClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

func encodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func createRoom(t *testing.T, l *roomledger.Ledger) uint64 {
	t.Helper()
	appID, err := l.CreateApplication(
		contract.Room{},
		&ledger.AppCall{
			From: creator,
			Args: [][]byte{
				[]byte("Room 1"),
				[]byte("ipfs://room1"),
				[]byte("A room"),
				encodeUint64(price),
			},
			Note:  []byte(contract.CreationNote),
			TxFee: minFee,
		},
	)
	require.NoError(t, err)
	return appID
}

func makeGroup(
	appID uint64,
	from ledger.Address,
	nights uint64,
	amount uint64,
) []ledger.Operation {
	return []ledger.Operation{
		&ledger.AppCall{
			From:  from,
			AppID: appID,
			Args:  [][]byte{[]byte("make"), encodeUint64(nights)},
			TxFee: minFee,
		},
		&ledger.Payment{
			From:   from,
			To:     roomledger.ApplicationAddress(appID),
			Amount: amount,
			TxFee:  minFee,
		},
	}
}

func roomState(
	t *testing.T,
	l *roomledger.Ledger,
	appID uint64,
) *contract.RoomState {
	t.Helper()
	state, err := l.AppState(appID)
	require.NoError(t, err)
	st, err := contract.LoadRoomState(storeFromMap(state))
	require.NoError(t, err)
	return st
}

type storeFromMap map[string][]byte

func (s storeFromMap) Get(key string) ([]byte, bool) {
	value, ok := s[key]
	return value, ok
}

func TestReservationLifecycle(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 2_000_000),
	)
	appID := createRoom(t, l)
	appAddr := roomledger.ApplicationAddress(appID)

	// Book for two nights with the exact payment
	amount, err := contract.TotalAmount(price, 2)
	require.NoError(t, err)
	require.NoError(t, l.SubmitGroup(makeGroup(appID, guest, 2, amount)...))
	st := roomState(t, l, appID)
	assert.True(t, st.Reserved)
	assert.Equal(t, guest, st.ReservedTo)
	assert.Equal(t, uint64(startTime)+120, st.ReservationEnds)
	assert.Equal(t, amount, l.Balance(appAddr))
	// Guest paid the booking total plus two operation fees
	assert.Equal(t, 2_000_000-amount-2*minFee, l.Balance(guest))

	endOp := &ledger.AppCall{
		From:  guest,
		AppID: appID,
		Args:  [][]byte{[]byte("end")},
		TxFee: 2 * minFee,
	}

	// Premature release is denied
	clock.Advance(119 * time.Second)
	err = l.SubmitGroup(endOp)
	var notExpiredErr contract.ReservationNotExpiredError
	require.ErrorAs(t, err, &notExpiredErr)
	assert.True(t, roomState(t, l, appID).Reserved)

	// After expiry the deposit comes back via the inner payment; nightly
	// proceeds stay with the application account
	clock.Advance(1 * time.Second)
	guestBefore := l.Balance(guest)
	require.NoError(t, l.SubmitGroup(endOp))
	st = roomState(t, l, appID)
	assert.False(t, st.Reserved)
	assert.True(t, st.ReservedTo.IsZero())
	assert.Equal(t, uint64(0), st.ReservationEnds)
	assert.Equal(
		t,
		guestBefore-2*minFee+contract.ReservationFee,
		l.Balance(guest),
	)
	assert.Equal(t, price*2, l.Balance(appAddr))
}

func TestRejectedGroupHasNoEffects(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 5_000_000),
	)
	appID := createRoom(t, l)
	appAddr := roomledger.ApplicationAddress(appID)
	amount, err := contract.TotalAmount(price, 2)
	require.NoError(t, err)
	require.NoError(t, l.SubmitGroup(makeGroup(appID, guest, 2, amount)...))

	guestBefore := l.Balance(guest)
	appBefore := l.Balance(appAddr)
	stBefore := roomState(t, l, appID)

	// A second booking with a correct payment still rejects, and the
	// payment must be rolled back with it
	err = l.SubmitGroup(makeGroup(appID, guest, 2, amount)...)
	var reservedErr contract.RoomAlreadyReservedError
	require.ErrorAs(t, err, &reservedErr)
	assert.Equal(t, guestBefore, l.Balance(guest))
	assert.Equal(t, appBefore, l.Balance(appAddr))
	assert.Equal(t, stBefore, roomState(t, l, appID))
}

func TestMakeGroupSizeOne(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 5_000_000),
	)
	appID := createRoom(t, l)
	amount, err := contract.TotalAmount(price, 2)
	require.NoError(t, err)
	group := makeGroup(appID, guest, 2, amount)
	err = l.SubmitGroup(group[0])
	var sizeErr contract.WrongGroupSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.False(t, roomState(t, l, appID).Reserved)
	// Nothing was debited
	assert.Equal(t, uint64(5_000_000), l.Balance(guest))
}

func TestPooledFeeCoversInnerPayment(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 5_000_000),
	)
	appID := createRoom(t, l)
	amount, err := contract.TotalAmount(price, 1)
	require.NoError(t, err)
	require.NoError(t, l.SubmitGroup(makeGroup(appID, guest, 1, amount)...))
	clock.Advance(60 * time.Second)

	// The contract's own fee rule fires before runtime pooling
	err = l.SubmitGroup(&ledger.AppCall{
		From:  guest,
		AppID: appID,
		Args:  [][]byte{[]byte("end")},
		TxFee: minFee,
	})
	var feeErr contract.FeeNotPooledError
	require.ErrorAs(t, err, &feeErr)
	assert.True(t, roomState(t, l, appID).Reserved)
}

func TestDeleteApplication(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 10_000),
	)
	appID := createRoom(t, l)

	// Deletion by a non-creator rejects
	err := l.SubmitGroup(&ledger.AppCall{
		From:       guest,
		AppID:      appID,
		OnComplete: ledger.OnCompletionDelete,
		TxFee:      minFee,
	})
	var creatorErr contract.NotCreatorError
	require.ErrorAs(t, err, &creatorErr)
	_, err = l.AppState(appID)
	assert.NoError(t, err)

	// Deletion by the creator succeeds and destroys the instance
	require.NoError(t, l.SubmitGroup(&ledger.AppCall{
		From:       creator,
		AppID:      appID,
		OnComplete: ledger.OnCompletionDelete,
		TxFee:      minFee,
	}))
	_, err = l.AppState(appID)
	var unknownErr roomledger.UnknownApplicationError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestClearStateAlwaysAccepts(t *testing.T) {
	clock := newTestClock()
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
		roomledger.WithInitialBalance(guest, 10_000),
	)
	appID := createRoom(t, l)
	stBefore := roomState(t, l, appID)
	require.NoError(t, l.SubmitGroup(&ledger.AppCall{
		From:       guest,
		AppID:      appID,
		OnComplete: ledger.OnCompletionClearState,
		TxFee:      minFee,
	}))
	assert.Equal(t, stBefore, roomState(t, l, appID))
}

func TestCreateRejectsBadNote(t *testing.T) {
	l := roomledger.New(
		roomledger.WithMinFee(minFee),
		roomledger.WithInitialBalance(creator, 10_000),
	)
	_, err := l.CreateApplication(
		contract.Room{},
		&ledger.AppCall{
			From: creator,
			Args: [][]byte{
				[]byte("Room 1"),
				[]byte("ipfs://room1"),
				[]byte("A room"),
				encodeUint64(price),
			},
			Note:  []byte("wrong"),
			TxFee: minFee,
		},
	)
	var noteErr contract.MissingCreationNoteError
	require.ErrorAs(t, err, &noteErr)
	// Nothing committed, including the fee debit
	assert.Equal(t, uint64(10_000), l.Balance(creator))
}

// Competing booking groups are serialized by the runtime: exactly one wins,
// the rest reject against the committed reservation with no lost update
func TestCompetingReservations(t *testing.T) {
	defer goleak.VerifyNone(t)
	clock := newTestClock()
	options := []roomledger.LedgerOptionFunc{
		roomledger.WithMinFee(minFee),
		roomledger.WithTimeSource(clock.Now),
		roomledger.WithInitialBalance(creator, 10_000),
	}
	guests := make([]ledger.Address, 8)
	for i := range guests {
		guests[i] = ledger.HashAddress(fmt.Appendf(nil, "guest %d", i))
		options = append(
			options,
			roomledger.WithInitialBalance(guests[i], 5_000_000),
		)
	}
	l := roomledger.New(options...)
	appID := createRoom(t, l)
	amount, err := contract.TotalAmount(price, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, len(guests))
	for i, g := range guests {
		i, g := i, g
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.SubmitGroup(makeGroup(appID, g, 1, amount)...)
		}()
	}
	wg.Wait()

	accepted := 0
	for i, err := range results {
		if err == nil {
			accepted++
			assert.Equal(t, guests[i], roomState(t, l, appID).ReservedTo)
		} else {
			var reservedErr contract.RoomAlreadyReservedError
			assert.ErrorAs(t, err, &reservedErr)
			// Losers keep their funds
			assert.Equal(t, uint64(5_000_000), l.Balance(guests[i]))
		}
	}
	assert.Equal(t, 1, accepted)
}
