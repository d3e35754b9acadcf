package vaultmvp

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SubmitMode selects between a dry run and a real broadcast. Both modes run
// the identical construction and signing path, so what simulate checks is
// exactly what commit sends.
type SubmitMode int

const (
	ModeSimulate SubmitMode = iota
	ModeCommit
)

func (m SubmitMode) String() string {
	if m == ModeSimulate {
		return "simulate"
	}
	return "commit"
}

// SubmitResult is the outcome of Submit. Signature is only set in commit
// mode; Logs only in simulate mode.
type SubmitResult struct {
	Mode      SubmitMode
	Signature solana.Signature
	Logs      []string
}

// Submit assembles, signs and either simulates or broadcasts a transaction
// holding the given instructions. Commit mode waits for the signature to
// reach confirmed commitment. Rejections are surfaced with the ledger's raw
// reason; there is no retry here.
func (c *Client) Submit(ctx context.Context, mode SubmitMode, instructions ...solana.Instruction) (*SubmitResult, error) {
	latest, err := c.Rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latest.Value.Blockhash,
		solana.TransactionPayer(c.Signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if c.Signer.PublicKey().Equals(key) {
			return &c.Signer
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if mode == ModeSimulate {
		resp, err := c.Rpc.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
			SigVerify:  true,
			Commitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: simulation: %v", ErrTransactionRejected, err)
		}
		result := &SubmitResult{Mode: ModeSimulate, Logs: resp.Value.Logs}
		if resp.Value.Err != nil {
			return result, fmt.Errorf("%w: simulation: %v", ErrTransactionRejected, resp.Value.Err)
		}
		return result, nil
	}

	sig, err := c.Rpc.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionRejected, err)
	}
	if err := c.awaitConfirmation(ctx, sig); err != nil {
		return nil, err
	}
	return &SubmitResult{Mode: ModeCommit, Signature: sig}, nil
}

// awaitConfirmation polls signature status until confirmed. Any timeout is
// the caller's context; there is none built in.
func (c *Client) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for confirmation of %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}

		resp, err := c.Rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("failed to get status of %s: %w", sig, err)
		}
		if len(resp.Value) == 0 || resp.Value[0] == nil {
			continue
		}
		status := resp.Value[0]
		if status.Err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTransactionRejected, sig, status.Err)
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
	}
}
