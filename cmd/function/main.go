// cmd/function/main.go runs the Cloud Functions entry points locally or in
// a container. FUNCTION_TARGET selects ProcessFile (HTTP) or
// ProcessFileEvent (CloudEvent).
package main

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/andresuchdata/filedrop/internal/trigger"
	"github.com/andresuchdata/filedrop/pkg/logger"
)

func main() {
	logger.UseJSON(os.Stdout)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	trigger.Register()

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	if err := funcframework.Start(port); err != nil {
		logger.Log.Fatal().Err(err).Msg("funcframework.Start")
	}
}
