package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mrdoc/internal/chat"
	"mrdoc/internal/config"
	"mrdoc/internal/logger"
	"mrdoc/internal/shell"
)

func (app *App) addChatCommands(rootCmd *cobra.Command) {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to MedBot, the healthcare assistant",
		Long: `Start an interactive chat with MedBot. The conversation is tied to a session
id stored in the state directory, so it resumes where you left off.`,
		Args: cobra.NoArgs,
		RunE: app.runChat,
	}
	flags := chatCmd.Flags()
	flags.Duration("typing-delay", chat.DefaultTypingDelay, "Pause before showing each reply")
	flags.Bool("purge-on-reset", false, "Delete server history when \\clear starts a new conversation")
	if err := config.BindFlags(app.viper, flags); err != nil {
		panic(err)
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest <condition...>",
		Short: "Ask which doctors fit a condition",
		Args:  cobra.MinimumNArgs(1),
		RunE:  app.runSuggest,
	}

	rootCmd.AddCommand(chatCmd, suggestCmd)
}

func (app *App) runChat(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting MedBot chat", "api_url", app.cfg.APIURL)

	repl := shell.New(app.sessionStore(), app.client, app.gen, shell.Options{
		Out:          cmd.OutOrStdout(),
		Renderer:     app.renderer,
		TypingDelay:  app.cfg.TypingDelay,
		PurgeOnReset: app.cfg.PurgeOnReset,
	})
	return repl.Run(commandContext(cmd))
}

func (app *App) runSuggest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	raw, err := app.client.SuggestDoctors(commandContext(cmd), joinArgs(args))
	if err != nil {
		return app.fail(out, "suggesting doctors", err)
	}
	writeLines(out, app.renderer.Suggestion(raw))
	return nil
}

func (app *App) addSessionCommands(rootCmd *cobra.Command) {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or replace the chat session",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the session id and how much history the server holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()

			id, err := app.sessionStore().Current(ctx)
			if err != nil {
				return err
			}
			if id == "" {
				writeLines(out, app.renderer.Notice("No session yet: one is created when you start chatting."))
				return nil
			}
			writeLines(out, "Session: "+id)

			history, err := app.client.GetChatHistory(ctx, id)
			if err != nil {
				return app.fail(out, "loading conversation", err)
			}
			if !history.Exists {
				writeLines(out, "Messages: 0")
				return nil
			}
			writeLines(out, fmt.Sprintf("Messages: %d", len(history.RecentMessages)))
			return nil
		},
	}

	var purge bool
	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Start a new conversation with a fresh session id",
		Long: `Replace the session id. The previous conversation stays on the server
unless --purge (or purge_on_reset) asks for it to be deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			conv := chat.NewConversation(app.sessionStore(), app.client, app.gen)
			if err := conv.Open(ctx); err != nil {
				return err
			}
			previous := conv.SessionID()
			id, err := conv.Reset(ctx, purge || app.cfg.PurgeOnReset)
			if err != nil {
				return err
			}
			writeLines(cmd.OutOrStdout(),
				"Previous session: "+previous,
				"New session: "+id,
			)
			return nil
		},
	}
	rotateCmd.Flags().BoolVar(&purge, "purge", false, "Delete the previous conversation on the server")

	clearCmd := &cobra.Command{
		Use:   "clear-history",
		Short: "Delete the server-side history of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()

			id, err := app.sessionStore().Current(ctx)
			if err != nil {
				return err
			}
			if id == "" {
				writeLines(out, app.renderer.Notice("No session yet: nothing to clear."))
				return nil
			}
			if err := app.client.ClearChatHistory(ctx, id); err != nil {
				return app.fail(out, "clearing conversation", err)
			}
			logger.SessionOperation("clear-history", id)
			app.success(out, "✅ Conversation history cleared.")
			return nil
		},
	}

	sessionCmd.AddCommand(showCmd, rotateCmd, clearCmd)
	rootCmd.AddCommand(sessionCmd)
}
