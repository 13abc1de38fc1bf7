// pdfbench is a correctness and load testing harness for the PDF
// generation service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pdfbench/cmd/pdfbench/cmd"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
