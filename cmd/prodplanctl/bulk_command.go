package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/service"
)

func newBulkEditCommand(ctx *commandContext) *cobra.Command {
	var ids []int64
	var ff *fieldFlags

	cmd := &cobra.Command{
		Use:   "bulk-edit",
		Short: "Применить одни и те же изменения к нескольким записям",
		Long: "Запросы отправляются параллельно. Пустые поля не меняются, " +
			"--clear-<поле> очищает поле у всех записей.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids = uniqueIDs(ids)
			if len(ids) == 0 {
				return errors.New("укажите --ids")
			}
			values, err := ff.bulkValues()
			if err != nil {
				return err
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}

			err = videos.BulkUpdate(cmd.Context(), ids, values)
			var batch *service.BatchError
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "Обновлено записей: %d\n", len(ids))
				return nil
			case errors.As(err, &batch):
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Обновлено записей: %d из %d\n", batch.Total-len(batch.Failed), batch.Total)
				for _, id := range batch.FailedIDs() {
					fmt.Fprintf(out, "  %d: %v\n", id, batch.Failed[id])
				}
				return service.ErrPartialBatch
			case errors.Is(err, service.ErrNoChanges):
				return errors.New("не задано ни одного изменения")
			default:
				return describeResolution(err)
			}
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "id записей через запятую")
	ff = newFieldFlags(cmd)
	return cmd
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
