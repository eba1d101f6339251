// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client implements the fragment/client request-reply process
// spec §4.10 describes: RPC-style requests against a storage.Store,
// each bounded by a wall-clock (not per-byte) timeout. It plays the
// role peer's request/timeout bookkeeping plays for exccd's wire
// protocol, generalized from exccd's fixed per-message timeout to this
// protocol's six named requests, each with its own deadline.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/wyrmchain/wyrmd/block"
	"github.com/wyrmchain/wyrmd/chainhash"
	"github.com/wyrmchain/wyrmd/storage"
)

// Per-request timeouts, spec §4.10.
const (
	TimeoutGetBlockTip     = 5 * time.Second
	TimeoutGetHeaders      = 5 * time.Minute
	TimeoutPullHeaders     = 5 * time.Minute
	TimeoutGetBlocks       = 10 * time.Minute
	TimeoutPullBlocks      = 60 * time.Minute
	TimeoutPullBlocksToTip = 60 * time.Minute
)

// ErrorCode identifies why a request failed.
type ErrorCode int

const (
	ErrNotFound ErrorCode = iota
	ErrNoKnownAncestor
	ErrTimedOut
)

// RequestError describes a failed request.
type RequestError struct {
	Code        ErrorCode
	Description string
}

func (e RequestError) Error() string { return e.Description }

func requestError(c ErrorCode, format string, args ...interface{}) RequestError {
	return RequestError{Code: c, Description: fmt.Sprintf(format, args...)}
}

// Server answers fragment/client requests against a Store.
type Server struct {
	store storage.Store
}

// NewServer returns a Server answering requests from store.
func NewServer(store storage.Store) *Server {
	return &Server{store: store}
}

// GetBlockTip returns the current chain tip's header.
func (s *Server) GetBlockTip(ctx context.Context) (block.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutGetBlockTip)
	defer cancel()

	type result struct {
		h   block.Header
		err error
	}
	done := make(chan result, 1)
	go func() {
		h, err := s.store.Tip()
		done <- result{h, err}
	}()

	select {
	case r := <-done:
		return r.h, r.err
	case <-ctx.Done():
		log.Debugf("GetBlockTip timed out after %s", TimeoutGetBlockTip)
		return block.Header{}, requestError(ErrTimedOut, "client: GetBlockTip timed out")
	}
}

// GetHeaders streams the headers of ids, in request order, stopping at
// the first id the store doesn't have.
func (s *Server) GetHeaders(ctx context.Context, ids []chainhash.Hash, sink func(block.Header) error) error {
	return s.streamByIDs(ctx, TimeoutGetHeaders, ids, func(b block.Block) error { return sink(b.Header) })
}

// GetBlocks streams the blocks of ids, in request order, stopping at
// the first id the store doesn't have.
func (s *Server) GetBlocks(ctx context.Context, ids []chainhash.Hash, sink func(block.Block) error) error {
	return s.streamByIDs(ctx, TimeoutGetBlocks, ids, sink)
}

func (s *Server) streamByIDs(ctx context.Context, timeout time.Duration, ids []chainhash.Hash, sink func(block.Block) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		for _, id := range ids {
			b, ok, err := s.store.Get(id)
			if err != nil {
				done <- err
				return
			}
			if !ok {
				log.Debugf("streamByIDs: %s not found, stopping short", id)
				done <- requestError(ErrNotFound, "client: no such block %s", id)
				return
			}
			if err := sink(b); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return requestError(ErrTimedOut, "client: request timed out")
	}
}

// PullHeaders streams headers from the closest ancestor of to among
// from, forward through to, inclusive.
func (s *Server) PullHeaders(ctx context.Context, from []chainhash.Hash, to chainhash.Hash, depthLimit uint32, sink func(block.Header) error) error {
	return s.pull(ctx, TimeoutPullHeaders, from, to, depthLimit, func(b block.Block) error { return sink(b.Header) })
}

// PullBlocks streams blocks from the closest ancestor of to among
// from, forward through to, inclusive.
func (s *Server) PullBlocks(ctx context.Context, from []chainhash.Hash, to chainhash.Hash, depthLimit uint32, sink func(block.Block) error) error {
	return s.pull(ctx, TimeoutPullBlocks, from, to, depthLimit, sink)
}

// PullBlocksToTip streams blocks from the closest ancestor of the
// current tip among from, forward through the tip, inclusive.
func (s *Server) PullBlocksToTip(ctx context.Context, from []chainhash.Hash, depthLimit uint32, sink func(block.Block) error) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutPullBlocksToTip)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		tip, err := s.store.Tip()
		if err != nil {
			done <- err
			return
		}
		tipID, err := tip.ID()
		if err != nil {
			done <- err
			return
		}
		done <- s.pullLocked(from, tipID, depthLimit, func(b block.Block) error { return sink(b) })
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return requestError(ErrTimedOut, "client: PullBlocksToTip timed out")
	}
}

func (s *Server) pull(ctx context.Context, timeout time.Duration, from []chainhash.Hash, to chainhash.Hash, depthLimit uint32, sink func(block.Block) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.pullLocked(from, to, depthLimit, sink) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return requestError(ErrTimedOut, "client: request timed out")
	}
}

func (s *Server) pullLocked(from []chainhash.Hash, to chainhash.Hash, depthLimit uint32, sink func(block.Block) error) error {
	ancestor, ok, err := s.store.FindClosestAncestor(from, to)
	if err != nil {
		return err
	}
	if !ok {
		log.Debugf("pullLocked: no known ancestor of %s among %d candidates", to, len(from))
		return requestError(ErrNoKnownAncestor, "client: no known ancestor of %s among the given ids", to)
	}
	return s.store.SendBranchWith(ancestor.Hash, to, depthLimit, func(b block.Block) block.Block { return b }, sink)
}
