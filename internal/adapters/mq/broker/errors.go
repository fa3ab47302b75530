package broker

import "errors"

// Sentinel kinds for broker errors.
var (
	ErrConnect           = errors.New("broker connect failed")
	ErrSubscribe         = errors.New("broker subscribe failed")
	ErrPublish           = errors.New("broker publish failed")
	ErrClosed            = errors.New("broker client closed")
	ErrAlreadySubscribed = errors.New("already subscribed")
)
