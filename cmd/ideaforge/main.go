package main

import (
	"ideaforge/cmd/handlers"
	"ideaforge/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
