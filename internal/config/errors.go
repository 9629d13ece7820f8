package config

import "errors"

// ErrInvalid wraps every validation failure returned by Config.Validate.
var ErrInvalid = errors.New("invalid config")
