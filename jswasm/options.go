// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build js && wasm

package jswasm

import (
	"github.com/joeycumines/logiface"
)

type hostOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Host instance.
type Option interface {
	applyHost(*hostOptions) error
}

type hostOptionImpl struct {
	applyHostFunc func(*hostOptions) error
}

func (o *hostOptionImpl) applyHost(opts *hostOptions) error {
	return o.applyHostFunc(opts)
}

// WithLogger sets the logger for listener registration tracing, at debug
// level. Nil disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &hostOptionImpl{func(opts *hostOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyHost(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
