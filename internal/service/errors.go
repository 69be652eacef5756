package service

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrBedOccupied  = errors.New("bed is already occupied")
	ErrBedNotFound  = errors.New("bed does not exist")
)
