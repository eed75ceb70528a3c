package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/config"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the shared cache",
	}

	flushCmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop every cached province and regency entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.cfg.Cache.Driver != config.CacheDriverRedis {
				return errors.New("CACHE_DRIVER is memory: each API process holds its own cache, restart it instead")
			}
			if !e.svc.Reads.Invalidator().All(cmd.Context()) {
				return errors.New("cache flush failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flushed cache group %q\n", e.cfg.Cache.Group)
			return nil
		},
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the cache backend is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(true)
			if err != nil {
				return err
			}
			defer e.Close()

			p, ok := e.svc.Store.(cache.Pinger)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "in-process cache, nothing to ping")
				return nil
			}
			if err := p.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("cache unreachable: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache reachable")
			return nil
		},
	}

	cacheCmd.AddCommand(flushCmd, pingCmd)
	return cacheCmd
}
