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

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blinklabs-io/roomledger"
	"github.com/blinklabs-io/roomledger/contract"
	"github.com/blinklabs-io/roomledger/ledger"
)

type demoFlags struct {
	flagset *flag.FlagSet
	name    string
	price   uint64
	nights  uint64
	debug   bool
}

func newDemoFlags() *demoFlags {
	f := &demoFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(&f.name, "name", "Room 1", "room display name")
	f.flagset.Uint64Var(&f.price, "price", 100, "price per night")
	f.flagset.Uint64Var(&f.nights, "nights", 2, "number of nights to book")
	f.flagset.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return f
}

func main() {
	f := newDemoFlags()
	if err := f.flagset.Parse(os.Args[1:]); err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	if f.nights == 0 {
		fmt.Printf("nights must be positive\n")
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if f.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}),
	)

	// A controllable clock so the demo can fast-forward past the
	// reservation expiry
	now := time.Now()
	clock := func() time.Time { return now }

	creator := ledger.HashAddress([]byte("demo creator"))
	guest := ledger.HashAddress([]byte("demo guest"))

	l := roomledger.New(
		roomledger.WithLogger(logger),
		roomledger.WithTimeSource(clock),
		roomledger.WithInitialBalance(creator, 10_000_000),
		roomledger.WithInitialBalance(guest, 10_000_000),
	)
	minFee := l.MinFee()

	fmt.Printf("creator: %s\n", creator)
	fmt.Printf("guest:   %s\n", guest)

	// Create the room instance
	appID, err := l.CreateApplication(
		contract.Room{},
		&ledger.AppCall{
			From: creator,
			Args: [][]byte{
				[]byte(f.name),
				[]byte("ipfs://demo-room"),
				[]byte("room-demo example listing"),
				encodeUint64(f.price),
			},
			Note:  []byte(contract.CreationNote),
			TxFee: minFee,
		},
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	appAddr := roomledger.ApplicationAddress(appID)
	fmt.Printf(
		"created room %q as application %d (account %s)\n",
		f.name,
		appID,
		appAddr,
	)

	// Book the room: application call plus exact payment in one group
	amount, err := contract.TotalAmount(f.price, f.nights)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	err = l.SubmitGroup(
		&ledger.AppCall{
			From:  guest,
			AppID: appID,
			Args:  [][]byte{[]byte("make"), encodeUint64(f.nights)},
			TxFee: minFee,
		},
		&ledger.Payment{
			From:   guest,
			To:     appAddr,
			Amount: amount,
			TxFee:  minFee,
		},
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf(
		"booked %d night(s) for %d (includes %d refundable deposit)\n",
		f.nights,
		amount,
		contract.ReservationFee,
	)

	endOp := &ledger.AppCall{
		From:  guest,
		AppID: appID,
		Args:  [][]byte{[]byte("end")},
		TxFee: 2 * minFee,
	}

	// Releasing before expiry must fail
	if err := l.SubmitGroup(endOp); err != nil {
		fmt.Printf("early release rejected as expected: %s\n", err)
	} else {
		fmt.Printf("ERROR: early release unexpectedly accepted\n")
		os.Exit(1)
	}

	// Fast-forward past the reservation end and release
	now = now.Add(time.Duration(f.nights)*contract.NightDuration + time.Second)
	if err := l.SubmitGroup(endOp); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf(
		"reservation released, deposit refunded; guest balance %d, room proceeds %d\n",
		l.Balance(guest),
		l.Balance(appAddr),
	)

	// Tear the instance down
	err = l.SubmitGroup(&ledger.AppCall{
		From:       creator,
		AppID:      appID,
		OnComplete: ledger.OnCompletionDelete,
		TxFee:      minFee,
	})
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("application %d deleted\n", appID)
}

func encodeUint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}
