// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package jsbridge

import (
	"github.com/joeycumines/logiface"
)

// bridgeOptions holds configuration options for Bridge creation.
type bridgeOptions struct {
	logger       *logiface.Logger[logiface.Event]
	errorHandler func(err error)
}

// BridgeOption configures a Bridge instance.
type BridgeOption interface {
	applyBridge(*bridgeOptions) error
}

// bridgeOptionImpl implements BridgeOption.
type bridgeOptionImpl struct {
	applyBridgeFunc func(*bridgeOptions) error
}

func (b *bridgeOptionImpl) applyBridge(opts *bridgeOptions) error {
	return b.applyBridgeFunc(opts)
}

// WithLogger sets the logger used to report registration transitions and
// subscriber failures. A nil logger disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) BridgeOption {
	return &bridgeOptionImpl{func(opts *bridgeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithErrorHandler sets a callback receiving each [*SubscriberError], after
// it has been logged. The handler runs on the host thread, inside dispatch,
// and must not panic.
func WithErrorHandler(handler func(err error)) BridgeOption {
	return &bridgeOptionImpl{func(opts *bridgeOptions) error {
		opts.errorHandler = handler
		return nil
	}}
}

// resolveBridgeOptions applies BridgeOption instances to bridgeOptions.
func resolveBridgeOptions(opts []BridgeOption) (*bridgeOptions, error) {
	cfg := &bridgeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyBridge(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
