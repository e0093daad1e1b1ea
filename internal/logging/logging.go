package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Release mode gets the JSON
// production config; anything else gets the console development
// config.
func New(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
