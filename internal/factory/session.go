package factory

import (
	"context"
	"errors"
	"sync"
)

var errSessionClosed = errors.New("session closed")

// session establishes the gateway at most once. Every caller waits for the
// same outcome, success or failure, which is kept for the session lifetime.
type session struct {
	connect Connector

	once      sync.Once
	closeOnce sync.Once
	ready     chan struct{}
	gw        Gateway
	err       error
}

func newSession(connect Connector) *session {
	return &session{connect: connect, ready: make(chan struct{})}
}

func (s *session) get(ctx context.Context) (Gateway, error) {
	s.once.Do(func() {
		// The first caller's cancellation must not decide the outcome for
		// everyone else.
		connCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(s.ready)
			s.gw, s.err = s.connect(connCtx)
		}()
	})

	select {
	case <-s.ready:
		return s.gw, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// close waits for an in-flight connect and closes the gateway it produced.
// A session closed before first use never connects.
func (s *session) close() error {
	var err error
	s.closeOnce.Do(func() {
		s.once.Do(func() {
			s.err = errSessionClosed
			close(s.ready)
		})
		<-s.ready
		if s.err == nil && s.gw != nil {
			err = s.gw.Close()
		}
	})
	return err
}
