package deploy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/ligo"
	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tezos"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// Options configures a Sequencer. Client, the three contracts, Config,
// and StatePath are required; Store and Logf are optional.
type Options struct {
	Client tezos.Client
	FA2    *ligo.Contract
	Quorum *ligo.Contract
	Minter *ligo.Contract
	Views  []*tzip16.View
	Config *Config

	// StatePath is where the deployment snapshot is persisted.
	StatePath string

	// Network names the chain for block-explorer links.
	Network string

	// Store, when set, journals the run.
	Store storage.RunStore

	Logf func(format string, args ...any)
}

// Sequencer drives the five-stage deployment: originate FA2, quorum,
// and minter, then hand the FA2 administration to the minter and
// confirm it. Each stage runs only when the persisted state has not
// passed it yet, so a failed run re-runs from the stage that failed.
// Contracts from completed stages are never rolled back.
type Sequencer struct {
	opts  Options
	logf  func(format string, args ...any)
	state *domain.DeploymentState
	runID string
}

// NewSequencer validates the options and builds a sequencer.
func NewSequencer(opts Options) (*Sequencer, error) {
	if opts.Client == nil || opts.Config == nil {
		return nil, fmt.Errorf("deploy: sequencer needs a client and a config")
	}
	if opts.FA2 == nil || opts.Quorum == nil || opts.Minter == nil {
		return nil, fmt.Errorf("deploy: sequencer needs all three contracts")
	}
	if opts.StatePath == "" {
		return nil, fmt.Errorf("deploy: sequencer needs a state path")
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Sequencer{opts: opts, logf: logf}, nil
}

// Run executes the deployment from wherever the persisted state left
// off and returns the assembled result.
func (s *Sequencer) Run(ctx context.Context) (*domain.DeploymentResult, error) {
	state, err := ReadState(s.opts.StatePath)
	if err != nil {
		return nil, err
	}
	s.state = state
	state.Network = s.opts.Network
	state.Tokens = s.opts.Config.Tokens
	state.Signers = s.opts.Config.Signers
	state.Threshold = s.opts.Config.Threshold

	if err := s.journalStart(ctx); err != nil {
		return nil, err
	}

	if err := s.runStages(ctx); err != nil {
		s.journalUpdate(context.WithoutCancel(ctx), err.Error())
		return nil, err
	}

	result := state.Result()
	s.logf("[sequencer] FA2 contract: %s", result.FA2Address)
	s.logf("[sequencer] Quorum contract: %s", result.QuorumAddress)
	s.logf("[sequencer] Minter contract: %s", result.MinterAddress)
	return &result, nil
}

func (s *Sequencer) runStages(ctx context.Context) error {
	if err := s.stage(ctx, domain.StatusFA2Deployed, s.deployFA2); err != nil {
		return err
	}
	if err := s.stage(ctx, domain.StatusQuorumDeployed, s.deployQuorum); err != nil {
		return err
	}
	if err := s.stage(ctx, domain.StatusMinterDeployed, s.deployMinter); err != nil {
		return err
	}
	if err := s.stage(ctx, domain.StatusAdminHandoff, s.handoffAdmin); err != nil {
		return err
	}
	return s.stage(ctx, domain.StatusAdminConfirmed, s.confirmAdmin)
}

// stage runs fn unless the state already reached target, then advances
// and persists the state.
func (s *Sequencer) stage(ctx context.Context, target domain.Status, fn func(ctx context.Context) error) error {
	if s.state.Status.Reached(target) {
		s.logf("[sequencer] %s already done, skipping", target)
		return nil
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("deploy: stage %s: %w", target, err)
	}
	s.state.Status = target
	s.state.UpdatedAt = time.Now().UTC()
	if err := WriteState(s.opts.StatePath, s.state); err != nil {
		return err
	}
	s.journalUpdate(ctx, "")
	return nil
}

func (s *Sequencer) deployFA2(ctx context.Context) error {
	s.logf("[sequencer] deploying fa2")
	meta, err := FA2Metadata(s.opts.Views)
	if err != nil {
		return err
	}
	encoded, err := tzip16.Encode(meta)
	if err != nil {
		return err
	}
	record := FA2Storage(s.opts.Client.AccountHash(), s.opts.Config.Tokens, encoded)
	initial, err := s.opts.FA2.EncodeStorage(record)
	if err != nil {
		return err
	}
	addr, err := s.opts.Client.Originate(ctx, s.opts.FA2.Code(), initial)
	if err != nil {
		return err
	}
	s.state.FA2Address = addr
	s.printContract(addr)
	return nil
}

func (s *Sequencer) deployQuorum(ctx context.Context) error {
	s.logf("[sequencer] deploying quorum contract")
	encoded, err := tzip16.Encode(QuorumMetadata())
	if err != nil {
		return err
	}
	cfg := s.opts.Config
	record := QuorumStorage(s.opts.Client.AccountHash(), cfg.Signers, cfg.Threshold, encoded)
	initial, err := s.opts.Quorum.EncodeStorage(record)
	if err != nil {
		return err
	}
	addr, err := s.opts.Client.Originate(ctx, s.opts.Quorum.Code(), initial)
	if err != nil {
		return err
	}
	s.state.QuorumAddress = addr
	s.printContract(addr)
	return nil
}

func (s *Sequencer) deployMinter(ctx context.Context) error {
	s.logf("[sequencer] deploying minter contract")
	encoded, err := tzip16.Encode(MinterMetadata())
	if err != nil {
		return err
	}
	record := MinterStorage(s.opts.Client.AccountHash(), s.state.QuorumAddress, s.state.FA2Address, s.opts.Config.Tokens, encoded)
	initial, err := s.opts.Minter.EncodeStorage(record)
	if err != nil {
		return err
	}
	addr, err := s.opts.Client.Originate(ctx, s.opts.Minter.Code(), initial)
	if err != nil {
		return err
	}
	s.state.MinterAddress = addr
	s.printContract(addr)
	return nil
}

func (s *Sequencer) handoffAdmin(ctx context.Context) error {
	s.logf("[sequencer] nominating the minter as fa2 admin")
	_, err := s.opts.Client.Call(ctx, s.state.FA2Address, "set_admin", micheline.String(s.state.MinterAddress))
	return err
}

func (s *Sequencer) confirmAdmin(ctx context.Context) error {
	s.logf("[sequencer] confirming fa2 admin from the minter")
	_, err := s.opts.Client.Call(ctx, s.state.MinterAddress, "confirm_fa2_admin", micheline.String(s.state.FA2Address))
	return err
}

func (s *Sequencer) printContract(addr string) {
	s.logf("[sequencer] successfully originated %s", addr)
	if s.opts.Network != "" {
		s.logf("[sequencer] check out the contract at https://better-call.dev/%s/%s", s.opts.Network, addr)
	}
}

func (s *Sequencer) journalStart(ctx context.Context) error {
	if s.opts.Store == nil {
		return nil
	}
	s.runID = uuid.NewString()
	now := time.Now().UTC()
	run := s.runRecord("")
	run.StartedAt = now
	run.UpdatedAt = now
	if err := s.opts.Store.Insert(ctx, run); err != nil {
		return fmt.Errorf("deploy: journal run: %w", err)
	}
	return nil
}

// journalUpdate mirrors the state into the journal. Update failures
// are logged, never fatal.
func (s *Sequencer) journalUpdate(ctx context.Context, failure string) {
	if s.opts.Store == nil {
		return
	}
	run := s.runRecord(failure)
	run.UpdatedAt = time.Now().UTC()
	if err := s.opts.Store.Update(ctx, run); err != nil {
		s.logf("[sequencer] journal update failed: %v", err)
	}
}

func (s *Sequencer) runRecord(failure string) *domain.DeploymentRun {
	return &domain.DeploymentRun{
		RunID:         s.runID,
		Network:       s.opts.Network,
		Status:        s.state.Status,
		FA2Address:    s.state.FA2Address,
		QuorumAddress: s.state.QuorumAddress,
		MinterAddress: s.state.MinterAddress,
		FailureMsg:    failure,
	}
}
