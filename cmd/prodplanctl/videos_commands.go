package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/diff"
	"github.com/bigkaa/prodplan/internal/domain/model"
)

// findPageSize — размер страницы при поиске записи по id.
const findPageSize = 100

func newVideosCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Записи производственного плана",
	}
	cmd.AddCommand(newVideosListCommand(ctx))
	cmd.AddCommand(newVideosEditCommand(ctx))
	cmd.AddCommand(newVideosDeleteCommand(ctx))
	return cmd
}

func newVideosListCommand(ctx *commandContext) *cobra.Command {
	var req model.PageRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать страницу записей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			page, err := videos.List(cmd.Context(), req)
			if err != nil {
				return err
			}
			printVideoPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	addPageFlags(cmd, &req)
	return cmd
}

func addPageFlags(cmd *cobra.Command, req *model.PageRequest) {
	cmd.Flags().IntVar(&req.Page, "page", 0, "номер страницы с нуля")
	cmd.Flags().IntVar(&req.Size, "size", 10, "записей на странице")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "сортировка: поле[,asc|desc]")
}

func printVideoPage(w io.Writer, page *model.VideoPage) {
	headers := []string{"ID", "Компиляция", "Съёмка", "Монтаж", "Этап", "Статус", "Приоритет", "Режиссёр", "Монтажёр", "Релизы"}
	rows := make([][]string, 0, len(page.Content))
	for i := range page.Content {
		v := &page.Content[i]
		releases := make([]string, 0, len(v.Releases))
		for _, r := range v.SortedReleases() {
			releases = append(releases, r.ReleaseDateTime)
		}
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.CompilationName,
			v.FilmingStart,
			v.EditStart,
			string(v.Stage),
			string(v.Status),
			string(v.Priority),
			v.DirectorName(),
			v.EditorName(),
			strings.Join(releases, ", "),
		})
	}
	printTable(w, headers, rows, []columnAlignment{alignRight})
	fmt.Fprintf(w, "Страница %d из %d, всего записей: %d\n", page.Page.Number+1, max(page.Page.TotalPages, 1), page.Page.TotalElements)
}

func newVideosEditCommand(ctx *commandContext) *cobra.Command {
	var ff *fieldFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Изменить запись, отправив только изменённые поля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if !ff.any() {
				return errors.New("не задано ни одного поля")
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			original, err := videos.Find(cmd.Context(), id, findPageSize)
			if err != nil {
				return err
			}
			values, err := ff.editValues(original)
			if err != nil {
				return err
			}
			updated, err := videos.Update(cmd.Context(), original, values)
			if err != nil {
				return describeResolution(err)
			}
			if updated == original {
				fmt.Fprintf(cmd.OutOrStdout(), "Запись %d: изменений нет\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Запись %d обновлена\n", id)
			return nil
		},
	}
	ff = newFieldFlags(cmd, editFields...)
	return cmd
}

func newVideosDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Удалить запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			videos, err := ctx.videoService()
			if err != nil {
				return err
			}
			if err := videos.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Запись %d удалена\n", id)
			return nil
		},
	}
}

func parseIDArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный id %q", raw)
	}
	return id, nil
}

// describeResolution дополняет ошибку разрешения имени подсказкой.
func describeResolution(err error) error {
	var res *diff.ResolutionError
	if errors.As(err, &res) {
		return fmt.Errorf("%w: проверьте имя в справочнике", err)
	}
	return err
}
