package main

import (
	"context"

	"github.com/SscSPs/edu_center_app/internal/cli"
)

func main() {
	ctx := context.Background()
	cli.Main(ctx)
}
