// This file re-exports configuration types and functions from the config
// package so callers can set up a session without importing subpackages.
package chatapp

import (
	"github.com/fxpyramid/chatapp/config"
	"github.com/fxpyramid/chatapp/utils"
)

// Re-export core configuration types for easier access
type (
	// Config holds everything a session needs: the completion endpoint,
	// generation parameters, history location, and logging verbosity.
	// See config.Config for field documentation.
	Config = config.Config

	// ConfigOption mutates a Config during session construction.
	//
	// Example usage:
	//   session, err := chatapp.NewSession(surface, chatapp.SetModel("gpt-3.5-turbo"))
	ConfigOption = config.ConfigOption

	// LogLevel defines the verbosity of logging output, from LogLevelOff
	// through LogLevelDebug.
	LogLevel = utils.LogLevel
)

// Re-export core configuration functions
var (
	// LoadConfig builds a Config from CHATAPP_* environment variables,
	// falling back to defaults for anything unset.
	LoadConfig = config.LoadConfig

	// NewConfig returns a Config with default values.
	NewConfig = config.NewConfig

	// ApplyOptions applies configuration options to a Config.
	ApplyOptions = config.ApplyOptions

	// SetEndpoint sets the completion endpoint URL.
	SetEndpoint = config.SetEndpoint

	// SetModel selects the model requested from the endpoint.
	SetModel = config.SetModel

	// SetTemperature sets the sampling temperature, in [0, 2].
	SetTemperature = config.SetTemperature

	// SetTimeout bounds each HTTP round trip.
	SetTimeout = config.SetTimeout

	// SetHistoryDir sets where saved conversations are written.
	SetHistoryDir = config.SetHistoryDir

	// SetRole selects the starting role for submitted messages.
	SetRole = config.SetRole

	// SetLogLevel sets logging verbosity.
	SetLogLevel = config.SetLogLevel
)

// Re-export logging levels
const (
	LogLevelOff   = utils.LogLevelOff
	LogLevelError = utils.LogLevelError
	LogLevelWarn  = utils.LogLevelWarn
	LogLevelInfo  = utils.LogLevelInfo
	LogLevelDebug = utils.LogLevelDebug
)

// SupportedModels lists the models the endpoint accepts.
var SupportedModels = config.SupportedModels
