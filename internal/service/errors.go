package service

import "errors"

var (
	ErrTokenCreationFailed = errors.New("token creation failed")
)
