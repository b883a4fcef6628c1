package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
)

func newRetentionCommand(ctx *commandContext) *cobra.Command {
	var req model.PageRequest
	var rt string

	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Лучшая версия каждой записи страницы в момент ранжирования",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(rt)
			if err != nil {
				return err
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			page, err := videos.List(cmd.Context(), req)
			if err != nil {
				return err
			}

			entries := make([]retention.Entry, 0, len(page.Content))
			for i := range page.Content {
				rec := &page.Content[i]
				entries = append(entries, retention.Entry{
					ID:              rec.ID,
					CompilationName: rec.CompilationName,
					Grid:            retention.ComputeGrid(rec),
				})
			}
			report := retention.BuildReport(entries, key)

			headers := []string{"ID", "Компиляция"}
			aligns := []columnAlignment{alignRight, alignLeft}
			for _, v := range model.Versions {
				headers = append(headers, string(v))
				aligns = append(aligns, alignRight)
			}
			headers = append(headers, "Лучшая")

			rows := make([][]string, 0, len(report.Rows))
			for _, r := range report.Rows {
				row := []string{strconv.FormatInt(r.ID, 10), r.CompilationName}
				for _, v := range model.Versions {
					c, _ := r.Grid.Cell(v, key)
					cell := c.Value.String()
					if r.HasWinner && v == r.Winner.Version {
						cell = "*" + cell
					}
					row = append(row, cell)
				}
				best := "—"
				if r.HasWinner {
					best = string(r.Winner.Version)
				}
				rows = append(rows, append(row, best))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Момент ранжирования: %s\n", key)
			printTable(out, headers, rows, aligns)
			return nil
		},
	}
	addPageFlags(cmd, &req)
	cmd.Flags().StringVar(&rt, "rt", string(retention.DefaultKey), "момент ранжирования: 3s, 15s, 30s, 45s")
	return cmd
}
