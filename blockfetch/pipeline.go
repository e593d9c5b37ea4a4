// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfetch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/excc-labs/fluxnoded/chaincfg/chainhash"
	"github.com/excc-labs/fluxnoded/store"
	"github.com/excc-labs/fluxnoded/validate"
	"github.com/excc-labs/fluxnoded/wire"
)

// ShieldedVerifier checks a block's Sprout/Sapling proofs. It is a separate
// stage from structural pre-validation because proof verification is the
// expensive part of block validation and, per §4.4, only runs against blocks
// that actually carry shielded spends or outputs; a block with none skips
// straight from verify to connect. The concrete prover lives outside this
// module (an external collaborator, per the shielded proof system's own
// library), so this package only depends on the interface.
type ShieldedVerifier interface {
	VerifyBlock(block *wire.MsgBlock) error
}

// Job is one block handed to the pipeline: the hash the fetcher asked for,
// the height it is expected to connect at, the decoded block, its raw wire
// bytes (ReorgTo needs these to replay a chain it has to disconnect and
// reconnect), and the address of the peer that supplied it so a failed
// stage can ban the right host.
type Job struct {
	Hash   chainhash.Hash
	Height int64
	Block  *wire.MsgBlock
	Raw    []byte
	From   string
}

func hasShieldedData(block *wire.MsgBlock) bool {
	for _, tx := range block.Transactions {
		if len(tx.ShieldedSpends) > 0 || len(tx.ShieldedOutputs) > 0 || len(tx.JoinSplits) > 0 {
			return true
		}
	}
	return false
}

type verifyOutcome struct {
	job Job
	err error
}

type shieldedOutcome struct {
	job Job
	err error
}

type blockStatus struct {
	job              Job
	verified         bool
	verifyErr        error
	shieldedRequired bool
	shieldedDone     bool
	shieldedErr      error
}

// Pipeline runs the three-stage verify/shielded/connect flow over one batch
// of fetched blocks: VerifyWorkers goroutines run the structural
// pre-validation concurrently, blocks that need it fan out to
// ShieldedWorkers goroutines running the shielded proof check, and a single
// connect stage commits blocks strictly in the order they were handed to
// Run, so height order is preserved regardless of which block finishes its
// checks first.
type Pipeline struct {
	DB            *store.DB
	Validate      *validate.Pipeline
	Shielded      ShieldedVerifier
	Banner        Banner
	VerifyWorkers int
	ShieldedWorkers int
}

// Run validates and connects jobs, which must already be in ascending
// connect (height) order. It returns once every job has connected or one has
// failed terminally: a verify/shielded rejection bans the supplying peer and
// stops the batch, a tip-moved-under-us race triggers a reorg through
// p.Validate and retries the rest of the batch against the new tip, and a
// stall (the pending block's checks don't land within
// ConnectPipelineIdleTimeout) stops the batch without banning anyone, since
// no single peer is necessarily at fault.
func (p *Pipeline) Run(stop <-chan struct{}, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if p.VerifyWorkers < 1 {
		p.VerifyWorkers = 1
	}
	if p.ShieldedWorkers < 1 {
		p.ShieldedWorkers = 1
	}

	order := make([]chainhash.Hash, len(jobs))
	statuses := make(map[chainhash.Hash]*blockStatus, len(jobs))
	for i, j := range jobs {
		order[i] = j.Hash
		statuses[j.Hash] = &blockStatus{job: j}
	}

	jobCh := make(chan Job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	shieldedCh := make(chan Job, len(jobs))
	verifyOut := make(chan verifyOutcome, len(jobs))
	shieldedOut := make(chan shieldedOutcome, len(jobs))

	var verifyWG sync.WaitGroup
	for i := 0; i < p.VerifyWorkers; i++ {
		verifyWG.Add(1)
		go func() {
			defer verifyWG.Done()
			for job := range jobCh {
				err := p.DB.PreValidateBlockBody(job.Block, job.Height)
				verifyOut <- verifyOutcome{job: job, err: err}
				if err == nil && hasShieldedData(job.Block) {
					shieldedCh <- job
				}
			}
		}()
	}
	go func() {
		verifyWG.Wait()
		close(shieldedCh)
		close(verifyOut)
	}()

	var shieldedWG sync.WaitGroup
	for i := 0; i < p.ShieldedWorkers; i++ {
		shieldedWG.Add(1)
		go func() {
			defer shieldedWG.Done()
			for job := range shieldedCh {
				var err error
				if p.Shielded != nil {
					err = p.Shielded.VerifyBlock(job.Block)
				}
				shieldedOut <- shieldedOutcome{job: job, err: err}
			}
		}()
	}
	go func() {
		shieldedWG.Wait()
		close(shieldedOut)
	}()

	cursor := 0
	idle := time.NewTimer(ConnectPipelineIdleTimeout)
	defer idle.Stop()

	for cursor < len(order) {
		select {
		case <-stop:
			return fmt.Errorf("blockfetch: pipeline stopped with %d of %d blocks connected", cursor, len(order))

		case <-idle.C:
			return fmt.Errorf("blockfetch: connect pipeline stalled waiting on %s", order[cursor])

		case v, ok := <-verifyOut:
			if !ok {
				verifyOut = nil
				break
			}
			resetIdle(idle)
			st := statuses[v.job.Hash]
			st.verified = true
			st.verifyErr = v.err
			st.shieldedRequired = v.err == nil && hasShieldedData(v.job.Block)

		case s, ok := <-shieldedOut:
			if !ok {
				shieldedOut = nil
				break
			}
			resetIdle(idle)
			st := statuses[s.job.Hash]
			st.shieldedDone = true
			st.shieldedErr = s.err
		}

		for cursor < len(order) {
			st := statuses[order[cursor]]
			if !st.verified {
				break
			}
			if st.verifyErr != nil {
				p.reject(st.job, st.verifyErr)
				return fmt.Errorf("blockfetch: block %s failed verification: %w", st.job.Hash, st.verifyErr)
			}
			if st.shieldedRequired {
				if !st.shieldedDone {
					break
				}
				if st.shieldedErr != nil {
					p.reject(st.job, st.shieldedErr)
					return fmt.Errorf("blockfetch: block %s failed shielded verification: %w", st.job.Hash, st.shieldedErr)
				}
			}

			if err := p.connectOne(st.job); err != nil {
				if errors.Is(err, store.ErrTipMoved) {
					log.Debugf("blockfetch: tip moved connecting %s, reorging onto it", st.job.Hash)
					if rerr := p.recoverFromReorg(st.job); rerr != nil {
						return rerr
					}
					cursor++
					continue
				}
				return fmt.Errorf("blockfetch: connect %s: %w", st.job.Hash, err)
			}
			cursor++
		}
	}
	return nil
}

func resetIdle(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(ConnectPipelineIdleTimeout)
}

func (p *Pipeline) connectOne(job Job) error {
	_, err := p.Validate.AcceptBlock(job.Block, job.Raw)
	return err
}

// recoverFromReorg handles a connect attempt that lost the race against a
// concurrently-accepted competing chain: job's header is still the best
// header chain's block at its height, so reorging onto it is just replaying
// it as the new tip rather than walking an unrelated chain.
func (p *Pipeline) recoverFromReorg(job Job) error {
	raw := map[chainhash.Hash][]byte{job.Hash: job.Raw}
	if err := p.Validate.ReorgTo(job.Hash, []*wire.MsgBlock{job.Block}, raw); err != nil {
		return fmt.Errorf("blockfetch: reorg to %s after tip moved: %w", job.Hash, err)
	}
	return nil
}

func (p *Pipeline) reject(job Job, err error) {
	if p.Banner == nil || job.From == "" {
		return
	}
	if store.IsConsensusFailure(err) {
		p.Banner.Ban(hostOf(job.From), BlockPeerBanSecsProtocol, time.Now())
	}
}
