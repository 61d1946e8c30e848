// +build !release

package main

import "time"

const (
	DEBUG                   = true
	SecretsPath             = "secrets-debug.json"
	MaxDBconnectionPoolSize = 30
	LiveboardInterval       = 5 * time.Minute
	FeedInterval            = 15 * time.Minute
)
