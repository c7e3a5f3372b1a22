package service

import "errors"

var (
	ErrEmptyField     = errors.New("required field is empty")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrWrongPassword  = errors.New("wrong password")
	ErrEmptyTask      = errors.New("task cannot be empty")
	ErrTaskNotFound   = errors.New("task not found")
)
