package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/prodplan/internal/apiclient"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти и сохранить токен",
		Long:  "Получает токен по логину и паролю. Пароль берётся из --password, PP_PASSWORD или первой строки stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("укажите --username")
			}
			if password == "" {
				password = os.Getenv("PP_PASSWORD")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("пароль не задан")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			client, err := ctx.client(false)
			if err != nil {
				return err
			}
			token, err := client.Login(cmd.Context(), username, password)
			if err != nil {
				if errors.Is(err, apiclient.ErrInvalidCredentials) {
					return errors.New("неверный логин или пароль")
				}
				return err
			}
			if err := ctx.saveToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Вход выполнен: %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "имя пользователя")
	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.Remove(ctx.tokenFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("удаление токена: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Токен удалён")
			return nil
		},
	}
}
