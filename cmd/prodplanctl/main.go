// prodplanctl — клиент командной строки для производственного плана
// видео-компиляций: вход, список записей, правка с отправкой только
// изменённых полей, массовая правка, измерения удержания и отчёт по ним.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "ошибка:", err)
		}
		os.Exit(1)
	}
}
