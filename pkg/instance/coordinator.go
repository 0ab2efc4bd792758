// Copyright 2025 walteh LLC
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

package instance

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrIPC marks a hand-off that could not reach the live instance.
var ErrIPC = errors.Base("instance hand-off failed")

// Host is the loopback address every tool listens on.
const Host = "127.0.0.1"

// Fixed ports, one per tool, so the two never cross-talk.
const (
	ClassifyPort  = 53451
	ChecklistPort = 53452
)

const (
	// DialTimeout bounds connect and write of an outbound hand-off.
	DialTimeout = 800 * time.Millisecond

	readTimeout = 2 * time.Second
	maxMessage  = 1 << 20
)

// State is the lifecycle of a Coordinator.
type State int

const (
	Unbound State = iota
	Authoritative
	Forwarding
	Closed
)

func (s State) String() string {
	switch s {
	case Authoritative:
		return "authoritative"
	case Forwarding:
		return "forwarding"
	case Closed:
		return "closed"
	default:
		return "unbound"
	}
}

// Handler receives decoded messages on the listener goroutine. It must hand
// the work off instead of touching engine state directly.
type Handler func(ctx context.Context, msg Message)

// 🔒 Coordinator decides whether this process is the one instance of a tool
type Coordinator struct {
	name string
	addr string

	// lockFn is swapped in tests to exercise the port-only fallback.
	lockFn func(name string) (Lock, error)

	mu       sync.Mutex
	state    State
	lock     Lock
	listener net.Listener
}

// New returns an Unbound coordinator for the tool identity name on port.
func New(name string, port int) *Coordinator {
	return &Coordinator{
		name:   name,
		addr:   net.JoinHostPort(Host, fmt.Sprint(port)),
		lockFn: AcquireLock,
	}
}

// Addr is the loopback address of the tool.
func (c *Coordinator) Addr() string { return c.addr }

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// 🎯 Acquire tries to become the authoritative instance. The named lock is
// tried first; when the platform has none, binding the port is the only proof
// of singularity. Calling it again after Forwarding retries.
func (c *Coordinator) Acquire(ctx context.Context) State {
	logger := zerolog.Ctx(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Authoritative || c.state == Closed {
		return c.state
	}

	lock, err := c.lockFn(c.name)
	switch {
	case err == nil:
		c.lock = lock
		ln, lerr := net.Listen("tcp", c.addr)
		if lerr != nil {
			// still the instance, late arrivals simply cannot reach us
			logger.Warn().Err(lerr).Str("addr", c.addr).Msg("listening for hand-offs")
		}
		c.listener = ln
		c.state = Authoritative

	case errors.Is(err, ErrLockHeld):
		logger.Debug().Str("name", c.name).Msg("another instance holds the lock")
		c.state = Forwarding

	default:
		logger.Debug().Err(err).Msg("no exclusive lock, falling back to port bind")
		ln, lerr := net.Listen("tcp", c.addr)
		if lerr != nil {
			logger.Debug().Err(lerr).Str("addr", c.addr).Msg("port taken")
			c.state = Forwarding
			break
		}
		c.listener = ln
		c.state = Authoritative
	}

	logger.Debug().Str("state", c.state.String()).Msg("instance coordination")
	return c.state
}

// Claim acquires singularity and, failing that, forwards msg to the live
// instance. It returns Authoritative when the caller should start up and
// Forwarding when it should exit. A file hand-off that cannot be delivered
// retries the claim once, since the previous holder may have just exited.
func (c *Coordinator) Claim(ctx context.Context, msg Message) (State, error) {
	if c.Acquire(ctx) == Authoritative {
		return Authoritative, nil
	}

	err := c.Forward(ctx, msg)
	if err == nil {
		return Forwarding, nil
	}

	if len(msg.Files) > 0 && c.Acquire(ctx) == Authoritative {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("hand-off failed, became the instance")
		return Authoritative, nil
	}

	return Forwarding, err
}

// 📤 Forward sends msg to the live instance with a short timeout.
func (c *Coordinator) Forward(ctx context.Context, msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return errors.Errorf("%w: %w", ErrIPC, err)
	}

	dialer := net.Dialer{Timeout: DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return errors.Errorf("%w: dialing %s: %w", ErrIPC, c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(DialTimeout)); err != nil {
		return errors.Errorf("%w: setting deadline: %w", ErrIPC, err)
	}
	if _, err := conn.Write(data); err != nil {
		return errors.Errorf("%w: writing: %w", ErrIPC, err)
	}

	zerolog.Ctx(ctx).Debug().Str("cmd", string(msg.Cmd)).Int("files", len(msg.Files)).Msg("handed off to live instance")
	return nil
}

// 👂 Serve accepts hand-offs until ctx is done or the coordinator is closed.
// Malformed payloads are logged and dropped.
func (c *Coordinator) Serve(ctx context.Context, handle Handler) error {
	c.mu.Lock()
	ln := c.listener
	c.mu.Unlock()

	if ln == nil {
		<-ctx.Done()
		return nil
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("addr", ln.Addr().String()).Msg("serving hand-offs")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || c.State() == Closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Errorf("%w: accepting: %w", ErrIPC, err)
		}
		c.handleConn(ctx, conn, handle)
	}
}

func (c *Coordinator) handleConn(ctx context.Context, conn net.Conn, handle Handler) {
	logger := zerolog.Ctx(ctx)
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		logger.Warn().Err(err).Msg("setting read deadline")
		return
	}

	data, err := io.ReadAll(io.LimitReader(conn, maxMessage))
	if err != nil && len(data) == 0 {
		logger.Warn().Err(err).Msg("reading hand-off")
		return
	}

	msg, err := Decode(data)
	if err != nil {
		logger.Warn().Err(err).Int("bytes", len(data)).Msg("ignoring hand-off")
		return
	}

	handle(ctx, msg)
}

// Close stops listening and releases the lock. It is safe to call twice.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return nil
	}
	c.state = Closed

	var errs []error
	if c.listener != nil {
		if err := c.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		c.listener = nil
	}
	if c.lock != nil {
		if err := c.lock.Release(); err != nil {
			errs = append(errs, err)
		}
		c.lock = nil
	}
	return errors.Join(errs...)
}
