package main

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/taskflow/internal/cli"
	"github.com/okian/taskflow/pkg/logger"
)

func main() {
	err := cli.Execute(context.Background())
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
