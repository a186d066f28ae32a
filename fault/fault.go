// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type AuthorizationError GenericError
type ArithmeticError GenericError
type ProtocolError GenericError
type NotImplementedError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised       = ProcessError("already initialised")
	ErrAssetNotFound            = NotFoundError("asset not found")
	ErrBlockHeightGap           = InvalidError("block height is not contiguous")
	ErrBlockLogBehindState      = InvalidError("state is more recent than block log")
	ErrBlockNotFound            = NotFoundError("block not found")
	ErrBlockTopHashMismatch     = InvalidError("state top block hash does not match block log")
	ErrInvalidHexKey            = InvalidError("hex key is invalid")
	ErrInvalidPageSize          = InvalidError("page size is invalid")
	ErrInvalidSignature         = ProtocolError("invalid signature")
	ErrKeyLength                = InvalidError("key length is invalid")
	ErrNotConnected             = ProcessError("not connected")
	ErrNotInitialised           = ProcessError("not initialised")
	ErrRoundTerminated          = ProtocolError("round already terminated")
	ErrSavepointNotFound        = NotFoundError("savepoint not found")
	ErrStartHashNotFound        = NotFoundError("start hash not found")
	ErrStopped                  = ProcessError("stopped")
	ErrTimeout                  = ProcessError("timeout")
	ErrTransactionAlreadyInUse  = ProcessError("transaction already in use")
	ErrTransactionNotInProgress = ProcessError("transaction not in progress")
	ErrUnknownPeer              = ProtocolError("vote from unknown peer")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string         { return string(e) }
func (e InvalidError) Error() string        { return string(e) }
func (e NotFoundError) Error() string       { return string(e) }
func (e ProcessError) Error() string        { return string(e) }
func (e AuthorizationError) Error() string  { return string(e) }
func (e ArithmeticError) Error() string     { return string(e) }
func (e ProtocolError) Error() string       { return string(e) }
func (e NotImplementedError) Error() string { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool         { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool        { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool       { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool        { _, ok := e.(ProcessError); return ok }
func IsErrAuthorization(e error) bool  { _, ok := e.(AuthorizationError); return ok }
func IsErrArithmetic(e error) bool     { _, ok := e.(ArithmeticError); return ok }
func IsErrProtocol(e error) bool       { _, ok := e.(ProtocolError); return ok }
func IsErrNotImplemented(e error) bool { _, ok := e.(NotImplementedError); return ok }
