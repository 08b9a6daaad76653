package main

import (
	"encoding/json"
	"strings"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"

	"github.com/spf13/cobra"
)

// classification is what `cargochat classify` prints.
type classification struct {
	Intent   intent.Intent   `json:"intent"`
	Entities intent.Entities `json:"entities"`
	RouteID  string          `json:"routeId,omitempty"`
	Reply    string          `json:"reply,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	var (
		catalogFile string
		withReply   bool
	)

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the intent and entities the router finds in a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(catalogFile)
			if err != nil {
				return err
			}

			d := intent.NewRouter(store, nil).Route(strings.Join(args, " "), &chatdomain.SessionContext{})
			out := classification{Intent: d.Intent, Entities: d.Entities}
			if d.Route != nil {
				out.RouteID = d.Route.ID
			}
			if withReply {
				out.Reply = d.Reply
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "YAML catalog to use instead of the embedded one")
	cmd.Flags().BoolVar(&withReply, "reply", false, "include the canned reply")
	return cmd
}
