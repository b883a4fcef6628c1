package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/retention"
)

func newTestsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "Измерения удержания записи",
	}
	cmd.AddCommand(newTestsShowCommand(ctx))
	cmd.AddCommand(newTestsSetCommand(ctx))
	return cmd
}

func newTestsShowCommand(ctx *commandContext) *cobra.Command {
	var rt string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Показать сводную таблицу версия × момент",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			key, err := parseKey(rt)
			if err != nil {
				return err
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			record, err := videos.Find(cmd.Context(), id, findPageSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d — %s\n", record.ID, record.CompilationName)
			printGrid(out, retention.ComputeGrid(record), key)
			return nil
		},
	}
	cmd.Flags().StringVar(&rt, "rt", string(retention.DefaultKey), "момент ранжирования: 3s, 15s, 30s, 45s")
	return cmd
}

func newTestsSetCommand(ctx *commandContext) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:     "set ID --row V1:30s=42 [--row ...]",
		Short:   "Заменить список измерений записи",
		Example: "  prodplanctl tests set 12 --row V1:30s=41.5 --row V2:30s=44",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			rows, err := parseRowSpecs(specs)
			if err != nil {
				return err
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			if _, err := videos.SaveTests(cmd.Context(), id, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Запись %d: сохранено измерений: %d\n", id, len(rows))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&specs, "row", nil, "измерение в виде ВЕРСИЯ:МОМЕНТ=ЗНАЧЕНИЕ")
	return cmd
}

// parseRowSpecs разбирает строки вида V1:30s=42. Пустой список очищает измерения.
func parseRowSpecs(specs []string) ([]retention.Row, error) {
	rows := make([]retention.Row, 0, len(specs))
	for _, spec := range specs {
		pair, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("строка %q: ожидается ВЕРСИЯ:МОМЕНТ=ЗНАЧЕНИЕ", spec)
		}
		version, moment, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("строка %q: ожидается ВЕРСИЯ:МОМЕНТ=ЗНАЧЕНИЕ", spec)
		}
		rows = append(rows, retention.Row{
			Version:       model.Version(strings.ToUpper(strings.TrimSpace(version))),
			RetentionTime: model.RetentionTime(strings.TrimSpace(moment)),
			Value:         value,
		})
	}
	if len(rows) > retention.MaxRows {
		return nil, fmt.Errorf("не больше %d измерений", retention.MaxRows)
	}
	return rows, nil
}

func parseKey(raw string) (model.RetentionTime, error) {
	key, ok := model.ParseRetentionTime(raw)
	if !ok {
		return "", fmt.Errorf("недопустимый момент %q, допустимые: 3s, 15s, 30s, 45s", raw)
	}
	return key, nil
}

func printGrid(w io.Writer, g retention.Grid, key model.RetentionTime) {
	headers := []string{""}
	aligns := []columnAlignment{alignLeft}
	for _, t := range model.RetentionTimes {
		headers = append(headers, string(t))
		aligns = append(aligns, alignRight)
	}
	rows := make([][]string, 0, len(model.Versions))
	for _, v := range model.Versions {
		row := []string{string(v)}
		for _, t := range model.RetentionTimes {
			c, _ := g.Cell(v, t)
			row = append(row, c.Value.String())
		}
		rows = append(rows, row)
	}
	printTable(w, headers, rows, aligns)

	if winner, ok := retention.BestVersion(g, key); ok {
		fmt.Fprintf(w, "Лучшая версия в %s: %s\n", key, winner.Version)
	} else {
		fmt.Fprintf(w, "Лучшей версии в %s нет\n", key)
	}
}
