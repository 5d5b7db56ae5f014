package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/assetid/internal/config"
	"github.com/standardbeagle/assetid/internal/debug"
	"github.com/standardbeagle/assetid/internal/mcp"
)

func mcpCommand(c *cli.Context) error {
	// Anything written to stdout outside the protocol corrupts the stream
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			debug.LogMCP("shutdown: %v", err)
		}
	}()

	return server.Start(c.Context)
}

func configCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	out, err := config.MarshalTOML(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = c.App.Writer.Write(out)
	return err
}
