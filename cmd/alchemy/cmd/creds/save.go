package creds

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"alchemy/cmd/alchemy/cmd/types"
	"alchemy/internal/secapi"
)

const hashMD5 = "md5"

var (
	remember bool
	hashAlg  string
)

var SaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Сохранить учетные данные",
	Long: `Сохраняет идентификатор и, с флагом --remember, пароль.
	
С --hash md5 в хранилище попадает MD5 пароля, а не сам пароль.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		store, err := app.Store()
		if err != nil {
			return err
		}

		id, err := identifierFromFlags()
		if err != nil {
			return err
		}
		if hashAlg != "" && hashAlg != hashMD5 {
			return fmt.Errorf("неподдерживаемый алгоритм хэширования: %s", hashAlg)
		}

		var auth *secapi.Authenticator
		if remember {
			fmt.Print("Пароль: ")
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("ошибка чтения пароля: %w", err)
			}
			fmt.Println()

			if len(password) == 0 {
				return fmt.Errorf("пароль не может быть пустым")
			}
			auth = secapi.NewClearAuthenticator(string(password))
			if hashAlg == hashMD5 {
				sum := md5.Sum(password)
				auth = secapi.NewHashAuthenticator(hashMD5, hex.EncodeToString(sum[:]))
			}
		}

		cred := store.CreateCredential(grid, id, auth)
		store.SaveCredential(cred, remember)
		if err := store.Flush(); err != nil {
			return fmt.Errorf("ошибка сохранения хранилища: %w", err)
		}

		fmt.Printf("%s Учетные данные %s сохранены для грида %s\n",
			color.GreenString("✓"), color.CyanString(cred.Username()), grid)
		return nil
	},
}

func init() {
	addGridFlag(SaveCmd)
	addIdentifierFlags(SaveCmd)
	SaveCmd.Flags().BoolVarP(&remember, "remember", "r", false, "сохранить пароль")
	SaveCmd.Flags().StringVar(&hashAlg, "hash", "", "хранить хэш пароля (md5)")
}
