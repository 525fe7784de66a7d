package model

import "errors"

// Domain errors. They are returned from inside a store mutation, before
// anything is written.
var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateNickname   = errors.New("nickname already taken")
	ErrDuplicateIP         = errors.New("an account was already registered from this address")
	ErrDuplicateFederation = errors.New("provider identity already linked to another account")
	ErrDuplicateAccountID  = errors.New("duplicate account id")

	// Input errors
	ErrInvalidNickname  = errors.New("nickname must be 1-32 letters, digits, '_', '.' or '-'")
	ErrReservedNickname = errors.New("nickname is reserved")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidPassword  = errors.New("password must be 8-72 bytes")
	ErrInvalidOutcome   = errors.New("outcome must be win, loss or draw")

	// Friend errors
	ErrFriendSelf            = errors.New("cannot add yourself as a friend")
	ErrFriendExists          = errors.New("already in friend list")
	ErrFriendNotFound        = errors.New("friend not found")
	ErrFriendRequestNotFound = errors.New("no pending friend request from this account")
)
