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

// Package roomledger provides an in-memory host runtime for deterministic
// ledger programs: account balances, application instances with durable
// key/value state, and atomic evaluation of operation groups. Competing
// groups are serialized, and a group either fully commits or leaves no
// trace.
package roomledger

import (
	"encoding/binary"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/blinklabs-io/roomledger/ledger"
	"github.com/jinzhu/copier"
)

// DefaultMinFee is the default minimum required per-operation fee
const DefaultMinFee uint64 = 1000

// appAddressPrefix seeds holding-account address derivation
const appAddressPrefix = "roomledger/app"

// ApplicationAddress returns the holding-account address for an application
// ID. The derivation is deterministic so every validator computes the same
// account.
func ApplicationAddress(appID uint64) ledger.Address {
	data := make([]byte, 0, len(appAddressPrefix)+8)
	data = append(data, appAddressPrefix...)
	data = binary.BigEndian.AppendUint64(data, appID)
	return ledger.HashAddress(data)
}

// Application is one deployed program instance
type Application struct {
	Program ledger.Program
	Creator ledger.Address
	Address ledger.Address
	State   map[string][]byte
}

// ledgerState is everything a group evaluation may mutate. Groups are staged
// against a deep copy and swapped in on accept.
type ledgerState struct {
	Balances  map[ledger.Address]uint64
	Apps      map[uint64]*Application
	NextAppID uint64
}

func (s *ledgerState) clone() (*ledgerState, error) {
	var staged ledgerState
	err := copier.CopyWithOption(&staged, s, copier.Option{DeepCopy: true})
	if err != nil {
		return nil, err
	}
	if staged.Balances == nil {
		staged.Balances = map[ledger.Address]uint64{}
	}
	if staged.Apps == nil {
		staged.Apps = map[uint64]*Application{}
	}
	return &staged, nil
}

// debit removes funds from an account, rejecting on insufficient balance
func (s *ledgerState) debit(addr ledger.Address, amount uint64) error {
	balance := s.Balances[addr]
	if balance < amount {
		return InsufficientBalanceError{
			Address: addr,
			Balance: balance,
			Amount:  amount,
		}
	}
	s.Balances[addr] = balance - amount
	return nil
}

func (s *ledgerState) transfer(from, to ledger.Address, amount uint64) error {
	if err := s.debit(from, amount); err != nil {
		return err
	}
	s.Balances[to] += amount
	return nil
}

// Ledger is the host runtime. It owns all durable state and guarantees that
// each operation group is evaluated to completion with no concurrent
// modification observable mid-evaluation.
type Ledger struct {
	mutex      sync.Mutex
	logger     *slog.Logger
	minFee     uint64
	timeSource func() time.Time
	state      ledgerState
}

// New returns a Ledger configured with the provided options
func New(options ...LedgerOptionFunc) *Ledger {
	l := &Ledger{
		minFee:     DefaultMinFee,
		timeSource: time.Now,
		state: ledgerState{
			Balances:  map[ledger.Address]uint64{},
			Apps:      map[uint64]*Application{},
			NextAppID: 1,
		},
	}
	for _, option := range options {
		option(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Now returns the current ledger time in unix seconds
func (l *Ledger) Now() uint64 {
	t := l.timeSource().Unix()
	if t < 0 {
		return 0
	}
	return uint64(t)
}

// MinFee returns the minimum required per-operation fee
func (l *Ledger) MinFee() uint64 {
	return l.minFee
}

// Fund credits an account, bypassing fee accounting. Intended for test and
// demo setup.
func (l *Ledger) Fund(addr ledger.Address, amount uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.state.Balances[addr] += amount
}

// Balance returns an account's current balance
func (l *Ledger) Balance(addr ledger.Address) uint64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state.Balances[addr]
}

// AppState returns a copy of an application's durable state
func (l *Ledger) AppState(appID uint64) (map[string][]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	app, ok := l.state.Apps[appID]
	if !ok {
		return nil, UnknownApplicationError{AppID: appID}
	}
	return maps.Clone(app.State), nil
}

// AppCreator returns the creator account of an application
func (l *Ledger) AppCreator(appID uint64) (ledger.Address, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	app, ok := l.state.Apps[appID]
	if !ok {
		return ledger.Address{}, UnknownApplicationError{AppID: appID}
	}
	return app.Creator, nil
}

// CreateApplication evaluates the program's creation handler against the
// provided genesis call and, on acceptance, registers the instance and
// returns its allocated ID
func (l *Ledger) CreateApplication(
	prog ledger.Program,
	call *ledger.AppCall,
) (uint64, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if call.AppID != 0 {
		return 0, InvalidGenesisError{AppID: call.AppID}
	}
	staged, err := l.state.clone()
	if err != nil {
		return 0, err
	}
	if call.Fee() < l.minFee {
		return 0, InsufficientFeeError{
			Credit:   call.Fee(),
			Required: l.minFee,
		}
	}
	if err := staged.debit(call.Sender(), call.Fee()); err != nil {
		return 0, err
	}
	appID := staged.NextAppID
	app := &Application{
		Program: prog,
		Creator: call.Sender(),
		Address: ApplicationAddress(appID),
		State:   map[string][]byte{},
	}
	ctx := l.newEvalContext(app)
	result, err := prog.Evaluate(ctx, []ledger.Operation{call}, 0)
	if err != nil {
		l.logger.Warn(
			"rejected application creation",
			"sender", call.Sender().String(),
			"error", err,
		)
		return 0, err
	}
	if _, err := staged.applyResult(appID, app, &result); err != nil {
		return 0, err
	}
	staged.Apps[appID] = app
	staged.NextAppID++
	l.state = *staged
	l.logger.Info(
		"created application",
		"app_id", appID,
		"creator", call.Sender().String(),
		"address", app.Address.String(),
	)
	return appID, nil
}

// SubmitGroup atomically evaluates an ordered operation group. All effects
// commit together, or the group is discarded with none.
func (l *Ledger) SubmitGroup(ops ...ledger.Operation) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if len(ops) == 0 || len(ops) > ledger.MaxGroupSize {
		return GroupSizeError{Size: len(ops)}
	}
	staged, err := l.state.clone()
	if err != nil {
		return err
	}
	// Fees are debited up front by the invoker and pooled across the group
	var feeCredit uint64
	for _, op := range ops {
		if err := staged.debit(op.Sender(), op.Fee()); err != nil {
			return err
		}
		feeCredit += op.Fee()
	}
	innerCount := 0
	for i, op := range ops {
		switch op := op.(type) {
		case *ledger.Payment:
			if err := staged.transfer(op.From, op.To, op.Amount); err != nil {
				l.logger.Warn("rejected group", "error", err)
				return err
			}
		case *ledger.AppCall:
			if op.AppID == 0 {
				return InvalidGenesisError{AppID: op.AppID}
			}
			app, ok := staged.Apps[op.AppID]
			if !ok {
				return UnknownApplicationError{AppID: op.AppID}
			}
			ctx := l.newEvalContext(app)
			if op.OnComplete == ledger.OnCompletionClearState {
				// Forced removal: no validation, no state access
				app.Program.ClearState(ctx)
				continue
			}
			result, err := app.Program.Evaluate(ctx, ops, i)
			if err != nil {
				l.logger.Warn(
					"rejected group",
					"app_id", op.AppID,
					"sender", op.Sender().String(),
					"error", err,
				)
				return err
			}
			inner, err := staged.applyResult(op.AppID, app, &result)
			if err != nil {
				l.logger.Warn("rejected group", "error", err)
				return err
			}
			innerCount += inner
			if result.DeleteInstance && staged.Balances[app.Address] > 0 {
				// Funds held by a destroyed instance are unrecoverable
				l.logger.Warn(
					"application deleted with remaining balance",
					"app_id", op.AppID,
					"balance", staged.Balances[app.Address],
				)
			}
		default:
			return UnsupportedOperationError{OpType: op.Type()}
		}
	}
	// Pooled fees must cover every group operation plus every fee-exempt
	// inner payment issued during evaluation
	required := l.minFee * uint64(len(ops)+innerCount)
	if feeCredit < required {
		err := InsufficientFeeError{Credit: feeCredit, Required: required}
		l.logger.Warn("rejected group", "error", err)
		return err
	}
	l.state = *staged
	l.logger.Debug(
		"accepted group",
		"operations", len(ops),
		"inner_payments", innerCount,
	)
	return nil
}

// applyResult commits an accepted evaluation's effects to the staged state
// and returns the number of inner payments issued
func (s *ledgerState) applyResult(
	appID uint64,
	app *Application,
	result *ledger.Result,
) (int, error) {
	for key, value := range result.StateWrites {
		app.State[key] = value
	}
	innerCount := 0
	if result.Disbursement != nil {
		err := s.transfer(
			app.Address,
			result.Disbursement.To,
			result.Disbursement.Amount,
		)
		if err != nil {
			return 0, err
		}
		innerCount++
	}
	if result.DeleteInstance {
		delete(s.Apps, appID)
	}
	return innerCount, nil
}

// mapStore adapts an application's state map to the read-only StateStore
// interface programs see during evaluation
type mapStore map[string][]byte

func (m mapStore) Get(key string) ([]byte, bool) {
	value, ok := m[key]
	return value, ok
}

func (l *Ledger) newEvalContext(app *Application) *evalContext {
	return &evalContext{
		timestamp:  l.Now(),
		minFee:     l.minFee,
		appAddress: app.Address,
		creator:    app.Creator,
		store:      mapStore(app.State),
	}
}

type evalContext struct {
	timestamp  uint64
	minFee     uint64
	appAddress ledger.Address
	creator    ledger.Address
	store      ledger.StateStore
}

var _ ledger.EvalContext = (*evalContext)(nil)

func (c *evalContext) Timestamp() uint64 {
	return c.timestamp
}

func (c *evalContext) MinFee() uint64 {
	return c.minFee
}

func (c *evalContext) ApplicationAddress() ledger.Address {
	return c.appAddress
}

func (c *evalContext) CreatorAddress() ledger.Address {
	return c.creator
}

func (c *evalContext) State() ledger.StateStore {
	return c.store
}
