package engine

import "errors"

var (
	ErrIllegalMove         = errors.New("illegal move")
	ErrNoEmptyCells        = errors.New("no empty cells left")
	ErrBoardFinished       = errors.New("board is already finished")
	ErrMalformedSetupInput = errors.New("malformed setup input")
)
