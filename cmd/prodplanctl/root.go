package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/apiclient"
	"github.com/bigkaa/prodplan/internal/service"
)

// directoryTTL — справочники живут не дольше одной команды.
const directoryTTL = time.Minute

type commandContext struct {
	apiURL    string
	token     string
	tokenFile string
	timeout   time.Duration
	verbose   bool

	stderr io.Writer
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "prodplanctl",
		Short:         "Клиент производственного плана видео-компиляций",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.stderr = cmd.ErrOrStderr()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.apiURL, "api", os.Getenv("PP_API_URL"), "адрес REST API (PP_API_URL)")
	flags.StringVar(&ctx.token, "token", os.Getenv("PP_TOKEN"), "токен доступа (PP_TOKEN), по умолчанию из файла токена")
	flags.StringVar(&ctx.tokenFile, "token-file", defaultTokenFile(), "файл сохранённого токена")
	flags.DurationVar(&ctx.timeout, "timeout", 30*time.Second, "таймаут запроса к API")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "подробный лог в stderr")

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newVideosCommand(ctx))
	rootCmd.AddCommand(newBulkEditCommand(ctx))
	rootCmd.AddCommand(newTestsCommand(ctx))
	rootCmd.AddCommand(newRetentionCommand(ctx))

	return rootCmd
}

func (c *commandContext) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

// client создаёт клиент API. Токен берётся из --token, иначе из файла.
func (c *commandContext) client(withToken bool) (*apiclient.Client, error) {
	if strings.TrimSpace(c.apiURL) == "" {
		return nil, fmt.Errorf("не задан адрес API: укажите --api или PP_API_URL")
	}
	var provider apiclient.TokenProvider
	if withToken {
		token, err := c.resolveToken()
		if err != nil {
			return nil, err
		}
		provider = apiclient.StaticToken(token)
	}
	return apiclient.New(strings.TrimRight(c.apiURL, "/"), "", c.timeout, provider, c.logger())
}

func (c *commandContext) videoService() (*service.VideoService, error) {
	client, err := c.client(true)
	if err != nil {
		return nil, err
	}
	logger := c.logger()
	return service.NewVideoService(client, service.NewDirectoryCache(client, directoryTTL, logger), logger), nil
}

func (c *commandContext) resolveToken() (string, error) {
	if token := strings.TrimSpace(c.token); token != "" {
		return token, nil
	}
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("нет сохранённого токена: выполните `prodplanctl login`")
		}
		return "", fmt.Errorf("чтение токена %s: %w", c.tokenFile, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("файл токена %s пуст: выполните `prodplanctl login`", c.tokenFile)
	}
	return token, nil
}

// saveToken атомарно заменяет файл токена: прерванная запись не оставляет
// обрезанный токен.
func (c *commandContext) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return fmt.Errorf("создание каталога токена: %w", err)
	}
	if err := renameio.WriteFile(c.tokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("запись токена: %w", err)
	}
	return nil
}

func defaultTokenFile() string {
	if path := os.Getenv("PP_TOKEN_FILE"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "prodplan-token")
	}
	return filepath.Join(dir, "prodplan", "token")
}
