package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/kairn/backend/internal/model/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and identity dialog state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.do(cmd.Context(), http.MethodGet, "/api/session", nil)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the identity dialog (commits the default name if none is set)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.setOpen(cmd.Context(), true)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the identity dialog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.setOpen(cmd.Context(), false)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <name>",
	Short: "Submit a display name and close the dialog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.submit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the committed display name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.do(cmd.Context(), http.MethodDelete, "/api/identity", nil)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var newSessionCmd = &cobra.Command{
	Use:   "new-session",
	Short: "Remount the chat surface under a fresh session id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := api.do(cmd.Context(), http.MethodPost, "/api/session", nil)
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Open the identity dialog and fill it in interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		snap, err := api.setOpen(ctx, true)
		if err != nil {
			return err
		}

		dialogCopy := chat.DefaultDialogCopy()
		if snap.Dialog.Copy.Title != "" {
			dialogCopy = snap.Dialog.Copy
		}

		var name string
		if snap.Dialog.UserName != nil {
			name = *snap.Dialog.UserName
		}

		form := huh.NewForm(huh.NewGroup(
			huh.NewNote().Title(dialogCopy.Title).Description(dialogCopy.Description+"\n\n"+dialogCopy.DataNotice),
			huh.NewInput().
				Title("Nom").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("le nom ne peut pas être vide")
					}
					return nil
				}),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				snap, err = api.setOpen(ctx, false)
				if err != nil {
					return err
				}
				return printSnapshot(snap)
			}
			return err
		}

		snap, err = api.submit(ctx, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		return printSnapshot(snap)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream state changes from the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), api.wsURL(), nil)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer conn.Close()

		go func() {
			<-cmd.Context().Done()
			conn.Close()
		}()

		for {
			var msg struct {
				Type  string             `json:"type"`
				Data  *dispatch.Snapshot `json:"data"`
				Error string             `json:"error"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				if cmd.Context().Err() != nil {
					return nil
				}
				return err
			}
			if msg.Error != "" {
				fmt.Fprintln(os.Stderr, "error:", msg.Error)
				continue
			}
			if msg.Data != nil {
				if err := printSnapshot(*msg.Data); err != nil {
					return err
				}
			}
		}
	},
}

func printSnapshot(snap dispatch.Snapshot) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Println(formatSnapshot(snap))
	return nil
}

func formatSnapshot(snap dispatch.Snapshot) string {
	session := "-"
	if snap.Session != nil {
		session = snap.Session.ID
	}
	name := "(none)"
	if snap.Dialog.UserName != nil {
		name = fmt.Sprintf("%q", *snap.Dialog.UserName)
	}
	dialog := "closed"
	if snap.Dialog.Open {
		dialog = "open"
	}
	return fmt.Sprintf("session=%s user=%s dialog=%s seq=%d", session, name, dialog, snap.Seq)
}
